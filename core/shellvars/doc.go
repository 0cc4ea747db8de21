// Package shellvars tokenizes the shell-variable output produced by CLIs that
// support a `-f shell` formatter, where every field is printed as
// `name="value"` and a value may continue over several physical lines.
//
// The entry point is [Tokenize], which returns a [FieldMap] together with the
// recoverable problems found along the way ([MalformedLineError],
// [DuplicateKeyError]). Tokenization never fails as a whole: malformed input
// produces a map that omits or mis-groups the affected fields.
//
// Only the `name="value"` convention is understood. Quoting rules of a real
// shell (single quotes, `$'...'`, variable expansion) are not.
package shellvars
