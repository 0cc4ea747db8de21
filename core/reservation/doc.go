// Package reservation parses the output of
// `openstack reservation lease show <id> -f shell` into a [Lease] with its
// [Reservation] entries.
//
// [Parser.Parse] chains the three stages strictly in sequence: the dump is
// tokenized by package shellvars, the `reservations` field is scanned for
// embedded objects by [parse.ExtractObjects], and each reservation's
// `resource_properties` string is decoded by [parse.DecodeNested]. `amount`
// is coerced to an integer with [CoerceAmount].
//
// Every problem on the way is recoverable and ends up in Lease.Warnings; a
// Parser configured [WithObserver] also logs and counts them.
package reservation
