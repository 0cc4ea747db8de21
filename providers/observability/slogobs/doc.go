// Package slogobs implements observability.Provider on top of log/slog.
//
// Spans, counter updates and histogram observations are written as log
// records at DEBUG level, warnings and errors at their own levels. Output goes
// through [Handler], which renders compact single-line, pretty multi-line or
// JSON records. [New] reads RESFLAVORS_LOG_FORMAT and RESFLAVORS_LOG_LEVEL
// (falling back to LOG_FORMAT and LOG_LEVEL) unless [WithFormat] and
// [WithLevel] say otherwise. Logs go to stderr by default so that reports
// written to stdout stay machine-readable.
package slogobs
