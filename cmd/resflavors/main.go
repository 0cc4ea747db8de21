// Command resflavors lists the flavors reserved by Blazar leases.
//
// It runs `openstack reservation lease show <id> -f shell` for every lease,
// recovers the reservations embedded in the shell dump and prints each
// reservation's amount and resource_properties name.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(newApp(os.Stdin, os.Stdout, os.Stderr))
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "resflavors: %v\n", err)
		stop()
		os.Exit(1)
	}
}
