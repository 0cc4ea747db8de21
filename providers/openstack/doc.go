// Package openstack fetches lease data by running the openstack CLI.
//
// The CLI is reached through a [Runner], so tests and alternative transports
// can supply canned output. [ExecRunner] is the production implementation and
// applies a per-command timeout. [Client] knows the two commands resflavors
// needs: the lease table and the shell-format dump of one lease.
package openstack
