package shellvars

import (
	"fmt"
	"strings"
)

// DuplicatePolicy decides which value is kept when a field name occurs more
// than once in the same dump. Every duplicate is reported as a
// [DuplicateKeyError] regardless of the policy.
type DuplicatePolicy string

const (
	// DuplicateLastWins keeps the value of the last occurrence.
	DuplicateLastWins DuplicatePolicy = "last"

	// DuplicateFirstWins keeps the value of the first occurrence.
	DuplicateFirstWins DuplicatePolicy = "first"
)

// ParseDuplicatePolicy parses "last" or "first" (case-insensitive). An empty
// string selects [DuplicateLastWins].
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last":
		return DuplicateLastWins, nil
	case "first":
		return DuplicateFirstWins, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q (want last or first)", s)
	}
}

// String returns the string representation of the policy.
func (p DuplicatePolicy) String() string {
	return string(p)
}

// Option is a functional option for [Tokenize].
type Option func(*config)

type config struct {
	duplicates DuplicatePolicy
}

// WithDuplicatePolicy sets how repeated field names are resolved.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(c *config) {
		if p != "" {
			c.duplicates = p
		}
	}
}

func applyOptions(opts ...Option) *config {
	cfg := &config{duplicates: DuplicateLastWins}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
