package reservation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/leofalp/resflavors/core/parse"
	"github.com/leofalp/resflavors/core/shellvars"
	"github.com/leofalp/resflavors/internal/utils"
	"github.com/leofalp/resflavors/providers/observability"
)

// Field names used by `openstack reservation lease show -f shell` and by the
// reservation objects it embeds.
const (
	FieldLeaseName          = "name"
	FieldReservations       = "reservations"
	FieldAmount             = "amount"
	FieldResourceProperties = "resource_properties"
)

// ResourceProperties is the decoded `resource_properties` field of a
// reservation. Only the flavor name is typed; the full object is kept in Raw.
type ResourceProperties struct {
	Name string         `json:"name" yaml:"name"`
	Raw  map[string]any `json:"-" yaml:"-"`
}

// UnmarshalJSON decodes a JSON object into Raw, numbers kept as
// [json.Number], and copies its "name" member into Name. A null leaves the
// value untouched; a non-string name is an error.
func (rp *ResourceProperties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		return nil
	}

	var name string
	if v, ok := raw["name"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("name is %T, not a string", v)
		}
		name = s
	}
	rp.Name, rp.Raw = name, raw
	return nil
}

// Reservation is one reservation object of a lease.
type Reservation struct {
	Amount             Amount              `json:"amount" yaml:"amount"`
	ResourceProperties *ResourceProperties `json:"resource_properties,omitempty" yaml:"resource_properties,omitempty"`
	Raw                parse.Object        `json:"-" yaml:"-"`
}

// Name returns the resource properties name, or "" when the nested field was
// absent or could not be decoded.
func (r Reservation) Name() string {
	if r.ResourceProperties == nil {
		return ""
	}
	return r.ResourceProperties.Name
}

// Lease is everything recovered from one lease dump. Warnings collects every
// recoverable problem met while parsing it; Err is set only when the dump
// could not be obtained at all.
type Lease struct {
	ID           string        `json:"id" yaml:"id"`
	Name         string        `json:"name" yaml:"name"`
	Reservations []Reservation `json:"reservations" yaml:"reservations"`
	Warnings     []error       `json:"-" yaml:"-"`
	Err          error         `json:"-" yaml:"-"`
}

// Parser turns shell-format lease dumps into [Lease] values. The zero value
// is not usable; create one with [NewParser]. A Parser holds no mutable state
// and may be shared between goroutines.
type Parser struct {
	tokenizerOpts []shellvars.Option
	parseOpts     []parse.Option
	observer      observability.Provider
}

// NewParser creates a Parser with the given options.
func NewParser(opts ...Option) *Parser {
	cfg := applyOptions(opts...)

	parseOpts := []parse.Option{parse.WithUnescapeDepth(cfg.unescapeDepth)}
	if cfg.repair {
		parseOpts = append(parseOpts, parse.WithRepair())
	}

	return &Parser{
		tokenizerOpts: []shellvars.Option{shellvars.WithDuplicatePolicy(cfg.duplicates)},
		parseOpts:     parseOpts,
		observer:      cfg.observer,
	}
}

// Parse runs tokenize, extract and nested decode over one dump, in that
// order. It never fails: problems are returned in Lease.Warnings and the
// reservations that could be decoded are kept.
func (p *Parser) Parse(ctx context.Context, leaseID, dump string) *Lease {
	lease := &Lease{ID: leaseID}

	fields, warnings := shellvars.Tokenize(dump, p.tokenizerOpts...)
	for _, w := range warnings {
		p.warn(ctx, lease, w)
	}
	lease.Name = fields.Get(FieldLeaseName)

	for obj, err := range parse.ExtractObjects(fields.Get(FieldReservations), p.parseOpts...) {
		if err != nil {
			p.warn(ctx, lease, err)
			continue
		}
		lease.Reservations = append(lease.Reservations, p.reservation(ctx, lease, obj))
	}

	if p.observer != nil {
		p.observer.Debug(ctx, "Lease parsed",
			observability.String(observability.AttrLeaseID, leaseID),
			observability.String(observability.AttrLeaseName, lease.Name),
			observability.Int(observability.AttrFieldCount, len(fields)),
			observability.Int(observability.AttrReservationCount, len(lease.Reservations)),
			observability.Int(observability.AttrWarningCount, len(lease.Warnings)),
		)
	}
	return lease
}

func (p *Parser) reservation(ctx context.Context, lease *Lease, obj parse.Object) Reservation {
	r := Reservation{Raw: obj}

	amount, err := CoerceAmount(obj[FieldAmount])
	if err != nil {
		p.warn(ctx, lease, err)
	}
	r.Amount = amount

	if p.observer != nil {
		attrs := []observability.Attribute{
			observability.String(observability.AttrLeaseID, lease.ID),
			observability.String(observability.AttrReservationRaw, utils.TruncateString(utils.JSONToString(obj), 0)),
		}
		if amount.Valid {
			attrs = append(attrs, observability.Int64(observability.AttrReservationAmount, amount.Value))
		}
		p.observer.Trace(ctx, "Reservation decoded", attrs...)
	}

	props, found, err := parse.DecodeNestedAs[ResourceProperties](obj, FieldResourceProperties, p.parseOpts...)
	if err != nil {
		p.warn(ctx, lease, err)
		return r
	}
	if found && props.Raw != nil {
		r.ResourceProperties = &props
	}
	return r
}

func (p *Parser) warn(ctx context.Context, lease *Lease, err error) {
	lease.Warnings = append(lease.Warnings, err)
	if p.observer == nil {
		return
	}

	kind := WarningKind(err)
	attrs := []observability.Attribute{
		observability.String(observability.AttrLeaseID, lease.ID),
		observability.String(observability.AttrWarningKind, kind),
		observability.Error(err),
	}
	attrs = append(attrs, warningAttrs(err)...)
	p.observer.Warn(ctx, "Recoverable parse problem", attrs...)
	p.observer.Counter(observability.MetricWarnings).Add(ctx, 1,
		observability.String(observability.AttrWarningKind, kind))

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventWarning, attrs...)
	}
}

// Warning kinds reported in logs and metrics.
const (
	KindMalformedLine = "malformed_line"
	KindDuplicateKey  = "duplicate_key"
	KindObjectDecode  = "object_decode"
	KindFieldDecode   = "field_decode"
	KindCoercion      = "coercion"
	KindOther         = "other"
)

// WarningKind classifies a warning returned in Lease.Warnings as one of the
// Kind constants.
func WarningKind(err error) string {
	var (
		malformed *shellvars.MalformedLineError
		duplicate *shellvars.DuplicateKeyError
		object    *parse.ObjectError
		field     *parse.FieldError
		coercion  *CoercionError
	)
	switch {
	case errors.As(err, &malformed):
		return KindMalformedLine
	case errors.As(err, &duplicate):
		return KindDuplicateKey
	case errors.As(err, &object):
		return KindObjectDecode
	case errors.As(err, &field):
		return KindFieldDecode
	case errors.As(err, &coercion):
		return KindCoercion
	default:
		return KindOther
	}
}

// warningAttrs returns the location attributes carried by a typed warning.
func warningAttrs(err error) []observability.Attribute {
	var (
		malformed *shellvars.MalformedLineError
		duplicate *shellvars.DuplicateKeyError
		object    *parse.ObjectError
		field     *parse.FieldError
		coercion  *CoercionError
	)
	switch {
	case errors.As(err, &malformed):
		return []observability.Attribute{observability.Int(observability.AttrLine, malformed.Line)}
	case errors.As(err, &duplicate):
		return []observability.Attribute{
			observability.Int(observability.AttrLine, duplicate.Line),
			observability.String(observability.AttrField, duplicate.Key),
		}
	case errors.As(err, &object):
		return []observability.Attribute{observability.Int(observability.AttrObjectIndex, object.Index)}
	case errors.As(err, &field):
		return []observability.Attribute{observability.String(observability.AttrField, field.Field)}
	case errors.As(err, &coercion):
		return []observability.Attribute{observability.String(observability.AttrField, coercion.Field)}
	}
	return nil
}
