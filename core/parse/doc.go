// Package parse recovers JSON documents that were embedded, escaped, into
// another text format. CLI formatters often print a list of JSON objects as a
// quoted string with every inner double quote written as `\"`, and a field of
// those objects may itself be a JSON document serialised as a string.
//
// [ExtractObjects] unescapes such a value, locates each top-level object with
// a brace-matching scan (nested objects and braces inside string literals are
// handled) and decodes them one by one, reporting failures per object as
// [ObjectError] without stopping. [DecodeNested] and [DecodeNestedAs] decode
// one level deeper, from a string field of an already decoded object; an
// absent or non-string field is not an error, a field that is not JSON is a
// [FieldError].
//
// Decoding is strict by default. [WithRepair] enables a single retry through
// jsonrepair, and [ParseStringAs] converts a string into any primitive or
// JSON-decodable type with the same repair fallback.
package parse
