package reservation

import "fmt"

// CoercionError reports a field that could not be converted to the expected
// type. The raw value is kept on the record.
type CoercionError struct {
	Field string
	Value any
	Err   error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("reservation: cannot coerce %s=%#v to integer: %v", e.Field, e.Value, e.Err)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}
