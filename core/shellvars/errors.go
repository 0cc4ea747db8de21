package shellvars

import "fmt"

// MalformedLineError reports a non-blank line that neither starts a field
// nor continues an open multi-line value. The line is ignored.
type MalformedLineError struct {
	Line int
	Text string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("shellvars: line %d is not a field assignment: %q", e.Line, e.Text)
}

// DuplicateKeyError reports a field name that occurs again at Line. Policy
// records which occurrence was kept.
type DuplicateKeyError struct {
	Key    string
	Line   int
	Policy DuplicatePolicy
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("shellvars: field %q repeated at line %d (keeping %s)", e.Key, e.Line, e.Policy)
}
