package parse

// DecodeNested decodes the string stored under field as JSON.
//
// A missing field, or one whose value is not a string, is absent: the result
// is (nil, nil). A string that does not decode returns (nil, *FieldError).
// The string is decoded as is, without unescaping or brace scanning.
func DecodeNested(record Object, field string, opts ...Option) (any, error) {
	raw, ok := record[field].(string)
	if !ok {
		return nil, nil
	}
	v, err := decodeValue(raw, applyOptions(opts...).repair)
	if err != nil {
		return nil, &FieldError{Field: field, Value: raw, Err: err}
	}
	return v, nil
}

// DecodeNestedAs is the typed form of [DecodeNested]. found is false when the
// field is absent or not a string. The string is decoded as JSON into T with
// the same strictness and repair rules as DecodeNested, so a string T
// requires a JSON string literal.
//
// Example usage:
//
//	type ResourceProperties struct {
//	    Name string `json:"name"`
//	}
//	props, found, err := DecodeNestedAs[ResourceProperties](reservation, "resource_properties")
func DecodeNestedAs[T any](record Object, field string, opts ...Option) (result T, found bool, err error) {
	raw, ok := record[field].(string)
	if !ok {
		return result, false, nil
	}

	result, err = decodeInto[T](raw, applyOptions(opts...).repair)
	if err != nil {
		return result, true, &FieldError{Field: field, Value: raw, Err: err}
	}
	return result, true, nil
}
