// Package config loads resflavors settings from the environment, after an
// optional .env file has been merged into it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/leofalp/resflavors/core/collect"
	"github.com/leofalp/resflavors/core/report"
	"github.com/leofalp/resflavors/core/shellvars"
	"github.com/leofalp/resflavors/providers/openstack"
)

// Environment variable names.
const (
	EnvFile          = "RESFLAVORS_ENV_FILE"
	EnvOpenStackBin  = "RESFLAVORS_OPENSTACK_BIN"
	EnvConcurrency   = "RESFLAVORS_CONCURRENCY"
	EnvTimeout       = "RESFLAVORS_TIMEOUT"
	EnvUnescapeDepth = "RESFLAVORS_UNESCAPE_DEPTH"
	EnvDuplicates    = "RESFLAVORS_DUPLICATES"
	EnvRepairJSON    = "RESFLAVORS_REPAIR_JSON"
	EnvOutput        = "RESFLAVORS_OUTPUT"
)

// DefaultEnvFile is read when present and [EnvFile] is unset.
const DefaultEnvFile = ".env"

// DefaultTimeout bounds each openstack command.
const DefaultTimeout = 30 * time.Second

// ErrInvalidConfig wraps every validation and parse failure.
var ErrInvalidConfig = errors.New("resflavors: invalid configuration")

// Config holds the settings shared by every subcommand.
type Config struct {
	OpenStackBin  string
	Concurrency   int
	Timeout       time.Duration
	UnescapeDepth int
	Duplicates    shellvars.DuplicatePolicy
	RepairJSON    bool
	Output        report.Format
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		OpenStackBin:  openstack.DefaultBinary,
		Concurrency:   collect.DefaultConcurrency,
		Timeout:       DefaultTimeout,
		UnescapeDepth: 1,
		Duplicates:    shellvars.DuplicateLastWins,
		Output:        report.FormatText,
	}
}

// Load merges the .env file into the process environment, without
// overriding variables that are already set, and reads the configuration
// from it. A missing default .env is ignored; a missing file named by
// RESFLAVORS_ENV_FILE is an error.
func Load() (Config, error) {
	if path := os.Getenv(EnvFile); path != "" {
		if err := godotenv.Load(path); err != nil {
			return Config{}, fmt.Errorf("%w: load %s: %v", ErrInvalidConfig, path, err)
		}
	} else if _, err := os.Stat(DefaultEnvFile); err == nil {
		if err := godotenv.Load(DefaultEnvFile); err != nil {
			return Config{}, fmt.Errorf("%w: load %s: %v", ErrInvalidConfig, DefaultEnvFile, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv reads the configuration through getenv. Unset or blank variables
// keep their defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	var errs []error

	lookup := func(key string) (string, bool) {
		v := strings.TrimSpace(getenv(key))
		return v, v != ""
	}

	if v, ok := lookup(EnvOpenStackBin); ok {
		cfg.OpenStackBin = v
	}
	if v, ok := lookup(EnvConcurrency); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvConcurrency, err))
		}
		cfg.Concurrency = n
	}
	if v, ok := lookup(EnvTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvTimeout, err))
		}
		cfg.Timeout = d
	}
	if v, ok := lookup(EnvUnescapeDepth); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvUnescapeDepth, err))
		}
		cfg.UnescapeDepth = n
	}
	if v, ok := lookup(EnvDuplicates); ok {
		p, err := shellvars.ParseDuplicatePolicy(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvDuplicates, err))
		}
		cfg.Duplicates = p
	}
	if v, ok := lookup(EnvRepairJSON); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvRepairJSON, err))
		}
		cfg.RepairJSON = b
	}
	if v, ok := lookup(EnvOutput); ok {
		f, err := report.ParseFormat(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvOutput, err))
		}
		cfg.Output = f
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges. It is called by [FromEnv] and again by the
// CLI after flags have been applied.
func (c Config) Validate() error {
	var errs []error
	if c.OpenStackBin == "" {
		errs = append(errs, errors.New("openstack binary is empty"))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency %d is below 1", c.Concurrency))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout %s is negative", c.Timeout))
	}
	if c.UnescapeDepth < 0 {
		errs = append(errs, fmt.Errorf("unescape depth %d is negative", c.UnescapeDepth))
	}
	if _, err := shellvars.ParseDuplicatePolicy(string(c.Duplicates)); err != nil {
		errs = append(errs, err)
	}
	if _, err := report.ParseFormat(string(c.Output)); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
