package collect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leofalp/resflavors/core/reservation"
	"github.com/leofalp/resflavors/providers/observability"
	"github.com/leofalp/resflavors/providers/observability/slogobs"
)

type fakeSource struct {
	mu       sync.Mutex
	dumps    map[string]string
	failures map[string]error
	delay    func(id string) time.Duration

	active, peak atomic.Int32
}

func (f *fakeSource) ShowLease(ctx context.Context, id string) (string, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if f.delay != nil {
		select {
		case <-time.After(f.delay(id)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[id]; err != nil {
		return "", err
	}
	return f.dumps[id], nil
}

func leaseDump(name string, amount int) string {
	return fmt.Sprintf("name=%q\nreservations=\"{\\\"amount\\\": %d}\"\n", name, amount)
}

func TestCollect_PreservesOrder(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	source := &fakeSource{
		dumps: map[string]string{},
		// later ids finish first
		delay: func(id string) time.Duration {
			return time.Duration('f'-id[0]) * 5 * time.Millisecond
		},
	}
	for i, id := range ids {
		source.dumps[id] = leaseDump("lease-"+id, i+1)
	}

	leases, err := New(source, nil, WithConcurrency(5)).Collect(context.Background(), ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leases) != len(ids) {
		t.Fatalf("leases = %d, want %d", len(leases), len(ids))
	}
	for i, lease := range leases {
		if lease.ID != ids[i] || lease.Name != "lease-"+ids[i] {
			t.Errorf("leases[%d] = %s/%s", i, lease.ID, lease.Name)
		}
		if len(lease.Reservations) != 1 || lease.Reservations[0].Amount.Value != int64(i+1) {
			t.Errorf("leases[%d] reservations = %+v", i, lease.Reservations)
		}
	}
}

func TestCollect_ConcurrencyLimit(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	source := &fakeSource{
		dumps: map[string]string{},
		delay: func(string) time.Duration { return 10 * time.Millisecond },
	}

	if _, err := New(source, nil, WithConcurrency(2)).Collect(context.Background(), ids); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak := source.peak.Load(); peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestCollect_FailureIsolated(t *testing.T) {
	boom := errors.New("permission denied")
	source := &fakeSource{
		dumps:    map[string]string{"ok": leaseDump("fine", 1)},
		failures: map[string]error{"bad": boom},
	}

	leases, err := New(source, nil).Collect(context.Background(), []string{"bad", "ok"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(leases[0].Err, boom) {
		t.Errorf("leases[0].Err = %v", leases[0].Err)
	}
	if leases[1].Err != nil || leases[1].Name != "fine" {
		t.Errorf("leases[1] = %+v", leases[1])
	}
	if got := CountWarnings(leases); got != 1 {
		t.Errorf("CountWarnings() = %d, want 1", got)
	}
}

func TestCollect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &fakeSource{dumps: map[string]string{}}
	_, err := New(source, nil).Collect(ctx, []string{"a", "b"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCollect_Observer(t *testing.T) {
	var buf bytes.Buffer
	observer := slogobs.New(
		slogobs.WithFormat(slogobs.FormatJSON),
		slogobs.WithLevel(slog.LevelDebug),
		slogobs.WithOutput(&buf),
	)
	source := &fakeSource{
		dumps:    map[string]string{"ok": `name="x"` + "\n" + `reservations="{\"amount\": \"lots\"}"` + "\n"},
		failures: map[string]error{"bad": errors.New("boom")},
	}
	parser := reservation.NewParser(reservation.WithObserver(observer))

	leases, err := New(source, parser, WithObserver(observer)).Collect(context.Background(), []string{"ok", "bad"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := observer.CounterValue(observability.MetricLeasesFetched); got != 2 {
		t.Errorf("%s = %d, want 2", observability.MetricLeasesFetched, got)
	}
	if got := observer.CounterValue(observability.MetricWarnings); got != 1 {
		t.Errorf("%s = %d, want 1", observability.MetricWarnings, got)
	}
	if got := CountWarnings(leases); got != 2 {
		t.Errorf("CountWarnings() = %d, want 2", got)
	}

	output := buf.String()
	for _, want := range []string{
		`"span":"lease.fetch"`,
		`"msg":"Lease fetch failed"`,
		`"metric":"resflavors.lease.fetch.duration"`,
		`"msg":"Leases collected"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in log output", want)
		}
	}
}
