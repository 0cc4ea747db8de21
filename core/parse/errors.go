package parse

import (
	"errors"
	"fmt"

	"github.com/leofalp/resflavors/internal/utils"
)

// snippetLength bounds the candidate text quoted in error messages.
const snippetLength = 80

var errNotObject = errors.New("decoded value is not a JSON object")

// ObjectError reports one embedded object that could not be decoded. Index is
// the position of the candidate among all candidates found in the value and
// Offset its byte offset in the unescaped text. Snippet holds the full
// candidate text; Error only quotes its beginning.
type ObjectError struct {
	Index     int
	Offset    int
	Truncated bool
	Snippet   string
	Err       error
}

func (e *ObjectError) Error() string {
	kind := "invalid"
	if e.Truncated {
		kind = "truncated"
	}
	return fmt.Sprintf("parse: %s object #%d at offset %d: %v (%s)",
		kind, e.Index, e.Offset, e.Err, utils.TruncateString(e.Snippet, snippetLength))
}

func (e *ObjectError) Unwrap() error {
	return e.Err
}

// FieldError reports a string field whose content is not valid JSON.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("parse: field %q does not hold JSON: %v (%s)",
		e.Field, e.Err, utils.TruncateString(e.Value, snippetLength))
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
