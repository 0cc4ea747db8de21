package reservation

import (
	"github.com/leofalp/resflavors/core/shellvars"
	"github.com/leofalp/resflavors/providers/observability"
)

// Option is a functional option for configuring a [Parser].
type Option func(*config)

type config struct {
	duplicates    shellvars.DuplicatePolicy
	unescapeDepth int
	repair        bool
	observer      observability.Provider
}

// WithDuplicatePolicy sets how repeated shell fields are resolved.
func WithDuplicatePolicy(p shellvars.DuplicatePolicy) Option {
	return func(c *config) {
		c.duplicates = p
	}
}

// WithUnescapeDepth sets the number of `\"` unescape passes applied to the
// reservations field. Zero or below means "until nothing changes".
func WithUnescapeDepth(depth int) Option {
	return func(c *config) {
		c.unescapeDepth = depth
	}
}

// WithRepair enables a jsonrepair retry for objects that fail to decode.
func WithRepair(enabled bool) Option {
	return func(c *config) {
		c.repair = enabled
	}
}

// WithObserver sets the observability provider used to log and count
// warnings. A nil provider disables observability.
func WithObserver(o observability.Provider) Option {
	return func(c *config) {
		c.observer = o
	}
}

func applyOptions(opts ...Option) *config {
	cfg := &config{
		duplicates:    shellvars.DuplicateLastWins,
		unescapeDepth: 1,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
