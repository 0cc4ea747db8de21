package shellvars

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// fieldStart matches the first line of a field: identifier, equals sign,
// opening double quote, and the remainder of the line.
var fieldStart = regexp.MustCompile(`^(\w+)="(.*)`)

// FieldMap maps a field name to its raw value. Values keep embedded newlines
// and backslash-escaped quotes exactly as the CLI printed them.
type FieldMap map[string]string

// Get returns the raw value of key, or "" when the field is absent.
func (m FieldMap) Get(key string) string {
	return m[key]
}

// Keys returns the field names in lexical order.
func (m FieldMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Encode serialises the map back into `name="value"` lines, one per field, in
// lexical key order. Tokenizing the result yields the same map only for
// single-line values that do not end in an escaped quote. A multi-line value
// whose first line ends in a quote is cut at that line.
func (m FieldMap) Encode() string {
	var sb strings.Builder
	for _, k := range m.Keys() {
		fmt.Fprintf(&sb, "%s=\"%s\"\n", k, m[k])
	}
	return sb.String()
}

// Tokenize splits a shell-variable dump into a FieldMap.
//
// A line matching `name="...` opens a field. If the rest of that line ends
// in a double quote that is not preceded by a backslash the field is closed
// on the same line. Otherwise every following line that does not open a new
// field is appended to the value, and the value is closed (joined with "\n",
// one trailing quote stripped) when the next field starts or input ends.
//
// The returned errors are warnings only; the FieldMap is always usable.
func Tokenize(dump string, opts ...Option) (FieldMap, []error) {
	t := &tokenizer{
		cfg:    applyOptions(opts...),
		fields: make(FieldMap),
	}
	for i, line := range splitLines(dump) {
		t.feed(i+1, line)
	}
	t.flush()
	return t.fields, t.warnings
}

type tokenizer struct {
	cfg      *config
	fields   FieldMap
	warnings []error

	key       string
	keyLine   int
	fragments []string
}

func (t *tokenizer) feed(lineNo int, line string) {
	m := fieldStart.FindStringSubmatch(line)
	if m == nil {
		switch {
		case t.key != "":
			t.fragments = append(t.fragments, line)
		case strings.TrimSpace(line) != "":
			t.warnings = append(t.warnings, &MalformedLineError{Line: lineNo, Text: line})
		}
		return
	}

	t.flush()

	key, first := m[1], m[2]
	if strings.HasSuffix(first, `"`) && !strings.HasSuffix(first, `\"`) {
		t.commit(key, lineNo, first[:len(first)-1])
		return
	}
	t.key = key
	t.keyLine = lineNo
	t.fragments = append(t.fragments[:0], first)
}

// flush closes the open multi-line field, if any.
func (t *tokenizer) flush() {
	if t.key == "" {
		return
	}
	value := strings.TrimSuffix(strings.Join(t.fragments, "\n"), `"`)
	t.commit(t.key, t.keyLine, value)
	t.key = ""
	t.fragments = t.fragments[:0]
}

func (t *tokenizer) commit(key string, lineNo int, value string) {
	if _, exists := t.fields[key]; exists {
		t.warnings = append(t.warnings, &DuplicateKeyError{
			Key:    key,
			Line:   lineNo,
			Policy: t.cfg.duplicates,
		})
		if t.cfg.duplicates == DuplicateFirstWins {
			return
		}
	}
	t.fields[key] = value
}

// splitLines splits s the way a line-oriented reader would: a single trailing
// newline does not produce an empty last line and "\r\n" endings are
// accepted.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
