package overview

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/leofalp/resflavors/core/reservation"
)

// UnnamedFlavor is the flavor key for reservations without a decodable
// resource_properties name.
const UnnamedFlavor = "(unnamed)"

// Overview aggregates the leases of one run.
type Overview struct {
	Leases       int `json:"leases" yaml:"leases"`
	FailedLeases int `json:"failed_leases" yaml:"failed_leases"`
	Reservations int `json:"reservations" yaml:"reservations"`
	// UncountedReservations have an amount that could not be coerced and so
	// are missing from FlavorTotals.
	UncountedReservations int `json:"uncounted_reservations" yaml:"uncounted_reservations"`

	// FlavorTotals sums the coerced amounts per resource_properties name.
	FlavorTotals map[string]int64 `json:"flavor_totals" yaml:"flavor_totals"`
	// Warnings counts warnings per reservation.Kind* value.
	Warnings map[string]int `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	ExecutionStartTime time.Time `json:"execution_start_time,omitempty" yaml:"execution_start_time,omitempty"`
	ExecutionEndTime   time.Time `json:"execution_end_time,omitempty" yaml:"execution_end_time,omitempty"`
}

// FlavorTotal is one row of [Overview.Flavors].
type FlavorTotal struct {
	Name   string
	Amount int64
}

// New returns an empty Overview.
func New() *Overview {
	return &Overview{
		FlavorTotals: make(map[string]int64),
		Warnings:     make(map[string]int),
	}
}

// Summarize builds an Overview of leases. Nil entries are skipped.
func Summarize(leases []*reservation.Lease) *Overview {
	o := New()
	for _, lease := range leases {
		o.AddLease(lease)
	}
	return o
}

// AddLease folds one lease into the totals.
func (o *Overview) AddLease(lease *reservation.Lease) {
	if lease == nil {
		return
	}
	if o.FlavorTotals == nil {
		o.FlavorTotals = make(map[string]int64)
	}
	if o.Warnings == nil {
		o.Warnings = make(map[string]int)
	}

	o.Leases++
	if lease.Err != nil {
		o.FailedLeases++
		return
	}

	for _, r := range lease.Reservations {
		o.Reservations++
		if !r.Amount.Valid {
			o.UncountedReservations++
			continue
		}
		name := r.Name()
		if name == "" {
			name = UnnamedFlavor
		}
		o.FlavorTotals[name] += r.Amount.Value
	}
	for _, w := range lease.Warnings {
		o.Warnings[reservation.WarningKind(w)]++
	}
}

// TotalWarnings returns the number of warnings over every kind.
func (o *Overview) TotalWarnings() int {
	n := 0
	for _, count := range o.Warnings {
		n += count
	}
	return n
}

// Flavors returns the flavor totals ordered by name.
func (o *Overview) Flavors() []FlavorTotal {
	names := make([]string, 0, len(o.FlavorTotals))
	for name := range o.FlavorTotals {
		names = append(names, name)
	}
	slices.Sort(names)

	totals := make([]FlavorTotal, 0, len(names))
	for _, name := range names {
		totals = append(totals, FlavorTotal{Name: name, Amount: o.FlavorTotals[name]})
	}
	return totals
}

// StartExecution marks the start of the run.
func (o *Overview) StartExecution() {
	o.ExecutionStartTime = time.Now()
}

// EndExecution marks the end of the run.
func (o *Overview) EndExecution() {
	o.ExecutionEndTime = time.Now()
}

// ExecutionDuration returns the run duration.
// Returns 0 if execution hasn't started or ended.
func (o *Overview) ExecutionDuration() time.Duration {
	if o.ExecutionStartTime.IsZero() || o.ExecutionEndTime.IsZero() {
		return 0
	}
	return o.ExecutionEndTime.Sub(o.ExecutionStartTime)
}

// WriteText prints the summary as aligned text.
func (o *Overview) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Leases: %d (%d failed)\n", o.Leases, o.FailedLeases)
	fmt.Fprintf(&b, "Reservations: %d (%d without amount)\n", o.Reservations, o.UncountedReservations)

	flavors := o.Flavors()
	if len(flavors) > 0 {
		width := 0
		for _, f := range flavors {
			width = max(width, len(f.Name))
		}
		b.WriteString("Flavors:\n")
		for _, f := range flavors {
			fmt.Fprintf(&b, "  %-*s %d\n", width, f.Name, f.Amount)
		}
	}

	if total := o.TotalWarnings(); total > 0 {
		kinds := make([]string, 0, len(o.Warnings))
		for kind := range o.Warnings {
			kinds = append(kinds, kind)
		}
		slices.Sort(kinds)
		fmt.Fprintf(&b, "Warnings: %d\n", total)
		for _, kind := range kinds {
			fmt.Fprintf(&b, "  %s: %d\n", kind, o.Warnings[kind])
		}
	}

	if d := o.ExecutionDuration(); d > 0 {
		fmt.Fprintf(&b, "Duration: %s\n", d.Round(time.Millisecond))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
