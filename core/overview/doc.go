// Package overview summarizes a run over many leases: how many leases and
// reservations were seen, how many instances of each flavor are reserved,
// and how many warnings of each kind were reported.
//
// The central type is [Overview]; build one with [Summarize] or feed leases
// one at a time with [Overview.AddLease], then print it with
// [Overview.WriteText].
package overview
