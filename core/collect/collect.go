// Package collect runs the lease parsing pipeline over many lease ids with
// bounded concurrency.
package collect

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leofalp/resflavors/core/reservation"
	"github.com/leofalp/resflavors/internal/utils"
	"github.com/leofalp/resflavors/providers/observability"
)

// DefaultConcurrency is the number of leases fetched at once when no limit
// is configured.
const DefaultConcurrency = 4

// Source fetches the shell dump of one lease.
type Source interface {
	ShowLease(ctx context.Context, id string) (string, error)
}

// Collector fetches and parses leases. Create one with [New].
type Collector struct {
	source      Source
	parser      *reservation.Parser
	concurrency int
	observer    observability.Provider
}

// Option configures a Collector.
type Option func(*Collector)

// WithConcurrency limits the number of concurrent fetches. Values below one
// keep [DefaultConcurrency].
func WithConcurrency(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithObserver sets the observability provider. Nil disables observability.
func WithObserver(observer observability.Provider) Option {
	return func(c *Collector) {
		c.observer = observer
	}
}

// New creates a Collector. A nil parser uses reservation.NewParser().
func New(source Source, parser *reservation.Parser, opts ...Option) *Collector {
	if parser == nil {
		parser = reservation.NewParser()
	}
	c := &Collector{
		source:      source,
		parser:      parser,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect fetches and parses every id. The result has one Lease per id, in
// id order. A failed fetch is stored in that Lease's Err and does not stop
// the others; the returned error is non-nil only when ctx ends first.
func (c *Collector) Collect(ctx context.Context, ids []string) ([]*reservation.Lease, error) {
	leases := make([]*reservation.Lease, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			leases[i] = c.fetch(gctx, id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return leases, fmt.Errorf("collect leases: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return leases, fmt.Errorf("collect leases: %w", err)
	}

	if c.observer != nil {
		c.observer.Info(ctx, "Leases collected",
			observability.Int(observability.AttrLeaseCount, len(leases)),
			observability.Int(observability.AttrWarningCount, CountWarnings(leases)),
		)
	}
	return leases, nil
}

func (c *Collector) fetch(ctx context.Context, id string) *reservation.Lease {
	var span observability.Span
	if c.observer != nil {
		ctx, span = c.observer.StartSpan(ctx, observability.SpanLeaseFetch,
			observability.String(observability.AttrLeaseID, id),
		)
		defer span.End()
	}
	timer := utils.NewTimer()

	dump, err := c.source.ShowLease(ctx, id)
	if err != nil {
		elapsed := timer.Stop()
		if c.observer != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusError, "fetch failed")
			c.record(ctx, "error", elapsed)
			c.observer.Error(ctx, "Lease fetch failed",
				observability.String(observability.AttrLeaseID, id),
				observability.Error(err),
			)
		}
		return &reservation.Lease{ID: id, Err: err}
	}

	lease := c.parser.Parse(ctx, id, dump)
	elapsed := timer.Stop()
	if c.observer != nil {
		span.SetAttributes(
			observability.String(observability.AttrLeaseName, lease.Name),
			observability.Int(observability.AttrReservationCount, len(lease.Reservations)),
			observability.Int(observability.AttrWarningCount, len(lease.Warnings)),
		)
		span.SetStatus(observability.StatusOK, "")
		c.record(ctx, "ok", elapsed)
	}
	return lease
}

func (c *Collector) record(ctx context.Context, status string, elapsed time.Duration) {
	attr := observability.String(observability.AttrStatus, status)
	c.observer.Counter(observability.MetricLeasesFetched).Add(ctx, 1, attr)
	c.observer.Histogram(observability.MetricFetchDuration).Record(ctx, elapsed.Seconds(), attr)
}

// CountWarnings returns the total number of warnings over leases, counting a
// failed fetch as one.
func CountWarnings(leases []*reservation.Lease) int {
	n := 0
	for _, lease := range leases {
		if lease == nil {
			continue
		}
		n += len(lease.Warnings)
		if lease.Err != nil {
			n++
		}
	}
	return n
}
