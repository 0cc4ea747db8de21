package openstack

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/leofalp/resflavors/providers/observability"
)

// DefaultBinary is the CLI name looked up on PATH.
const DefaultBinary = "openstack"

// ErrNoLeases is returned by [Client.ListLeaseIDs] when the lease table
// contains no ids.
var ErrNoLeases = errors.New("resflavors: no leases found")

// leaseIDCell matches a UUID in the first column of `lease list` output.
var leaseIDCell = regexp.MustCompile(`(?m)^\|\s*([0-9a-f-]{36})\s*\|`)

// Client runs reservation commands through a Runner.
type Client struct {
	runner   Runner
	binary   string
	observer observability.Provider
}

// Option configures a Client.
type Option func(*Client)

// WithBinary sets the CLI binary; empty keeps [DefaultBinary].
func WithBinary(binary string) Option {
	return func(c *Client) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithObserver sets the observability provider. Nil disables observability.
func WithObserver(observer observability.Provider) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// NewClient creates a Client. A nil runner falls back to an [ExecRunner]
// without timeout.
func NewClient(runner Runner, opts ...Option) *Client {
	if runner == nil {
		runner = ExecRunner{}
	}
	c := &Client{runner: runner, binary: DefaultBinary}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListLeaseIDs runs `reservation lease list` and returns the ids in table
// order. Repeated ids are kept once.
func (c *Client) ListLeaseIDs(ctx context.Context) ([]string, error) {
	var span observability.Span
	if c.observer != nil {
		ctx, span = c.observer.StartSpan(ctx, observability.SpanLeaseList,
			observability.String(observability.AttrCommand, c.binary),
		)
		defer span.End()
	}

	out, err := c.run(ctx, "reservation", "lease", "list")
	if err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusError, "lease list failed")
		}
		return nil, fmt.Errorf("list leases: %w", err)
	}

	ids := ParseLeaseIDs(string(out))
	if span != nil {
		span.SetAttributes(observability.Int(observability.AttrLeaseCount, len(ids)))
	}
	if len(ids) == 0 {
		if span != nil {
			span.SetStatus(observability.StatusError, "no leases")
		}
		return nil, ErrNoLeases
	}
	if span != nil {
		span.SetStatus(observability.StatusOK, "")
	}
	return ids, nil
}

// ShowLease runs `reservation lease show <id> -f shell` and returns the dump.
func (c *Client) ShowLease(ctx context.Context, id string) (string, error) {
	out, err := c.run(ctx, "reservation", "lease", "show", id, "-f", "shell")
	if err != nil {
		return "", fmt.Errorf("show lease %s: %w", id, err)
	}
	return string(out), nil
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	if c.observer != nil {
		c.observer.Debug(ctx, "Running command",
			observability.String(observability.AttrCommand, c.binary),
			observability.String(observability.AttrCommandArgs, fmt.Sprint(args)),
		)
	}
	out, err := c.runner.Run(ctx, c.binary, args...)
	if err == nil && c.observer != nil {
		c.observer.Trace(ctx, "Command finished",
			observability.String(observability.AttrCommand, c.binary),
			observability.Int(observability.AttrOutputBytes, len(out)),
		)
	}
	return out, err
}

// ParseLeaseIDs returns the UUIDs found in the first column of `lease list`
// output, first occurrence order.
func ParseLeaseIDs(table string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, m := range leaseIDCell.FindAllStringSubmatch(table, -1) {
		if id := m[1]; !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
