package reservation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/leofalp/resflavors/core/parse"
)

// Amount is the number of resources a reservation asks for. Value holds the
// integer when the decoded field could be coerced; otherwise Valid is false
// and Raw carries the decoded value unchanged.
type Amount struct {
	Value int64
	Valid bool
	Raw   any
}

// CoerceAmount converts a decoded `amount` field to an integer. JSON numbers
// and decimal strings are accepted; fractional numbers are truncated toward
// zero. Anything else, including a missing field, yields an Amount carrying
// the raw value and a *CoercionError.
func CoerceAmount(v any) (Amount, error) {
	a := Amount{Raw: v}

	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			a.Value, a.Valid = i, true
			return a, nil
		}
		f, err := n.Float64()
		if err != nil {
			return a, &CoercionError{Field: FieldAmount, Value: v, Err: err}
		}
		return coerceFloat(a, f)
	case float64:
		return coerceFloat(a, n)
	case int:
		a.Value, a.Valid = int64(n), true
		return a, nil
	case int64:
		a.Value, a.Valid = n, true
		return a, nil
	case string:
		i, err := parse.ParseStringAs[int64](n)
		if err != nil {
			return a, &CoercionError{Field: FieldAmount, Value: v, Err: err}
		}
		a.Value, a.Valid = i, true
		return a, nil
	default:
		return a, &CoercionError{Field: FieldAmount, Value: v, Err: fmt.Errorf("unsupported type %T", v)}
	}
}

// coerceFloat truncates f toward zero. float64(math.MaxInt64) rounds up to
// 2^63, which does not fit, hence the >= bound.
func coerceFloat(a Amount, f float64) (Amount, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return a, &CoercionError{Field: FieldAmount, Value: a.Raw, Err: fmt.Errorf("%v out of int64 range", f)}
	}
	a.Value, a.Valid = int64(f), true
	return a, nil
}

// String renders the integer, or the raw value when coercion failed.
func (a Amount) String() string {
	if a.Valid {
		return strconv.FormatInt(a.Value, 10)
	}
	if a.Raw == nil {
		return "n/a"
	}
	return fmt.Sprintf("%v", a.Raw)
}

// MarshalJSON encodes the integer, or the raw value when coercion failed.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.Valid {
		return json.Marshal(a.Value)
	}
	return json.Marshal(a.Raw)
}

// MarshalYAML encodes the integer, or the raw value when coercion failed.
func (a Amount) MarshalYAML() (any, error) {
	if a.Valid {
		return a.Value, nil
	}
	if n, ok := a.Raw.(json.Number); ok {
		return n.String(), nil
	}
	return a.Raw, nil
}
