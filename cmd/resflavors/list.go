package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/resflavors/core/collect"
	"github.com/leofalp/resflavors/core/overview"
	"github.com/leofalp/resflavors/providers/observability"
)

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Fetch every lease and print its reservations",
		Long: `Lists the lease ids with "openstack reservation lease list", fetches each lease
with "openstack reservation lease show <id> -f shell" and prints the report.

A lease that cannot be fetched is reported with its error; the others are
still printed.`,
		Args: cobra.NoArgs,
		RunE: a.runList,
	}
	addOutputFlags(a, cmd)
	cmd.Flags().IntVarP(&a.concurrency, "concurrency", "c", collect.DefaultConcurrency, "number of leases fetched at once")
	cmd.Flags().BoolVar(&a.summary, "summary", false, "print flavor totals and warning counts to stderr")
	return cmd
}

func (a *app) runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	client := a.client()
	summary := overview.New()
	summary.StartExecution()

	ids, err := client.ListLeaseIDs(ctx)
	if err != nil {
		return err
	}

	collector := collect.New(client, a.parser(),
		collect.WithConcurrency(a.cfg.Concurrency),
		collect.WithObserver(a.observer),
	)
	leases, err := collector.Collect(ctx, ids)
	if err != nil {
		return err
	}

	for _, lease := range leases {
		summary.AddLease(lease)
	}
	summary.EndExecution()
	a.observer.Info(ctx, "Run summary",
		observability.Int(observability.AttrLeaseCount, summary.Leases),
		observability.Int(observability.AttrReservationCount, summary.Reservations),
		observability.Int(observability.AttrWarningCount, summary.TotalWarnings()),
		observability.Duration(observability.AttrDuration, summary.ExecutionDuration()),
	)

	err = a.finish(leases, collect.CountWarnings(leases))
	if a.summary && (err == nil || errors.Is(err, ErrWarnings)) {
		if werr := summary.WriteText(a.stderr); werr != nil {
			return werr
		}
	}
	return err
}

func newIDsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ids",
		Short: "Print the lease ids, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ids, err := a.client().ListLeaseIDs(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				if _, err := fmt.Fprintln(a.stdout, id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
