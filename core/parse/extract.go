package parse

import (
	"iter"
	"strings"
)

// MaxUnescapePasses caps the number of unescape passes. A depth of zero or
// below, or anything larger, is clamped to this value.
const MaxUnescapePasses = 8

// Object is a decoded JSON object. Numbers are kept as [encoding/json.Number].
type Object = map[string]any

// Option configures [ExtractObjects], [ExtractAll] and the nested decoders.
type Option func(*options)

type options struct {
	unescapeDepth int
	repair        bool
}

// WithUnescapeDepth sets how many `\"` → `"` passes are applied before
// segmentation. Passes stop early once the text no longer changes. A depth of
// zero or below runs to a fixed point, bounded by [MaxUnescapePasses].
func WithUnescapeDepth(depth int) Option {
	return func(o *options) {
		o.unescapeDepth = depth
	}
}

// WithUnescapeFixedPoint unescapes until the text stops changing, bounded by
// [MaxUnescapePasses]. Equivalent to WithUnescapeDepth(0).
func WithUnescapeFixedPoint() Option {
	return WithUnescapeDepth(0)
}

// WithRepair retries a candidate that fails to decode once after running it
// through jsonrepair. Off by default: repair completes truncated objects, so
// a cut-off reservation would be reported as a real one.
func WithRepair() Option {
	return func(o *options) {
		o.repair = true
	}
}

func applyOptions(opts ...Option) *options {
	o := &options{unescapeDepth: 1}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Unescape replaces every backslash-quote pair with a bare quote, depth
// times. Each pass is a single left-to-right replacement, so `\\"` becomes
// `\"` after one pass and `"` after two.
func Unescape(s string, depth int) string {
	if depth <= 0 || depth > MaxUnescapePasses {
		depth = MaxUnescapePasses
	}
	for range depth {
		next := strings.ReplaceAll(s, `\"`, `"`)
		if next == s {
			break
		}
		s = next
	}
	return s
}

// ExtractObjects finds every top-level JSON object embedded in raw and
// decodes it. raw is first unescaped (see [WithUnescapeDepth]), then scanned
// for balanced `{...}` substrings; text between objects such as whitespace,
// commas or enclosing array brackets is skipped.
//
// The sequence yields (object, nil) for every decoded candidate and
// (nil, *ObjectError) for every candidate that fails to decode, in the order
// they appear in raw. A failure never stops the sequence. An object that is
// still open at the end of raw is yielded as a failure.
func ExtractObjects(raw string, opts ...Option) iter.Seq2[Object, error] {
	o := applyOptions(opts...)
	return func(yield func(Object, error) bool) {
		text := Unescape(raw, o.unescapeDepth)
		for i, seg := range segmentObjects(text) {
			v, err := decodeValue(seg.text, o.repair)
			obj, ok := v.(Object)
			if err == nil && !ok {
				err = errNotObject
			}
			if err != nil {
				failure := &ObjectError{
					Index:     i,
					Offset:    seg.offset,
					Truncated: !seg.complete,
					Snippet:   seg.text,
					Err:       err,
				}
				if !yield(nil, failure) {
					return
				}
				continue
			}
			if !yield(obj, nil) {
				return
			}
		}
	}
}

// ExtractAll drains [ExtractObjects] into a slice of decoded objects and a
// slice of per-object failures.
func ExtractAll(raw string, opts ...Option) ([]Object, []error) {
	var objects []Object
	var failures []error
	for obj, err := range ExtractObjects(raw, opts...) {
		if err != nil {
			failures = append(failures, err)
			continue
		}
		objects = append(objects, obj)
	}
	return objects, failures
}

type segment struct {
	offset   int
	text     string
	complete bool
}

// segmentObjects returns the balanced top-level `{...}` substrings of s in
// offset order. Braces inside JSON string literals do not count towards
// depth. When s ends with an object still open, the remainder from that
// object's brace is returned once as an incomplete segment and scanning
// resumes just after the brace, so complete objects hidden inside the
// unclosed span are still found.
func segmentObjects(s string) []segment {
	var segments []segment
	reportedOpen := false
	for pos := 0; pos < len(s); {
		found, open := scanObjects(s, pos)
		segments = append(segments, found...)
		if open < 0 {
			break
		}
		// every later open segment also runs to the end of s
		if !reportedOpen {
			segments = append(segments, segment{offset: open, text: s[open:], complete: false})
			reportedOpen = true
		}
		pos = open + 1
	}
	return segments
}

// scanObjects collects the complete objects of s[from:]. open is the offset
// of the object still unclosed at the end of s, or -1.
func scanObjects(s string, from int) (found []segment, open int) {
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := from; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				found = append(found, segment{offset: start, text: s[start : i+1], complete: true})
				start = -1
			}
		}
	}

	if depth > 0 && start >= 0 {
		return found, start
	}
	return found, -1
}
