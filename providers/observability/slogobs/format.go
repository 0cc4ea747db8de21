package slogobs

import (
	"os"
	"strings"
)

// Format represents the output format for logs.
type Format string

const (
	// FormatCompact is a single-line format with JSON attributes (default).
	// Example: 2026-10-19 10:40:35  WARN Recoverable parse problem → {"lease.id":"7c9e"}
	FormatCompact Format = "compact"

	// FormatPretty is a multi-line format with one attribute per line.
	FormatPretty Format = "pretty"

	// FormatJSON is one JSON object per record, for log aggregation.
	FormatJSON Format = "json"
)

// ParseFormat parses a format string and returns the corresponding Format.
// ok is false for unknown values, in which case FormatCompact is returned.
func ParseFormat(s string) (format Format, ok bool) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "compact", "":
		return FormatCompact, true
	case "pretty":
		return FormatPretty, true
	case "json":
		return FormatJSON, true
	default:
		return FormatCompact, false
	}
}

// GetFormatFromEnv reads RESFLAVORS_LOG_FORMAT, then LOG_FORMAT. Unset or
// unknown values yield FormatCompact.
func GetFormatFromEnv() Format {
	value := os.Getenv("RESFLAVORS_LOG_FORMAT")
	if value == "" {
		value = os.Getenv("LOG_FORMAT")
	}
	format, _ := ParseFormat(value)
	return format
}

// String returns the string representation of the Format.
func (f Format) String() string {
	return string(f)
}
