package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/leofalp/resflavors/core/report"
	"github.com/leofalp/resflavors/core/reservation"
	"github.com/leofalp/resflavors/core/shellvars"
	"github.com/leofalp/resflavors/internal/config"
	"github.com/leofalp/resflavors/providers/observability"
	"github.com/leofalp/resflavors/providers/observability/slogobs"
	"github.com/leofalp/resflavors/providers/openstack"
)

// ErrWarnings is returned under --strict when any lease reported a warning.
var ErrWarnings = errors.New("resflavors: warnings reported")

// app carries the dependencies and settings shared by every subcommand.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// runner is nil in production; ExecRunner is built from the config.
	runner     openstack.Runner
	loadConfig func() (config.Config, error)

	cfg      config.Config
	observer *slogobs.Observer

	logLevel      string
	logFormat     string
	unescapeDepth int
	duplicates    string
	repair        bool
	output        string
	concurrency   int
	strict        bool
	summary       bool
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: config.Load,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "resflavors",
		Short: "List the flavors reserved by OpenStack leases",
		Long: `resflavors reads the shell-format dump of each reservation lease and prints,
per lease, the amount and resource_properties name of every reservation.

Malformed lines, undecodable reservation objects and bad nested fields are
reported as warnings; everything that could be decoded is still printed.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (default from RESFLAVORS_LOG_LEVEL)")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: compact, pretty, json (default from RESFLAVORS_LOG_FORMAT)")
	flags.IntVar(&a.unescapeDepth, "unescape-depth", 1, `number of \" unescape passes; 0 repeats until stable`)
	flags.StringVar(&a.duplicates, "duplicates", "last", "which value wins for a repeated field: last or first")
	flags.BoolVar(&a.repair, "repair", false, "retry undecodable reservation objects through jsonrepair")

	root.AddCommand(newListCmd(a), newIDsCmd(a), newParseCmd(a))
	return root
}

// setup loads the configuration, applies the flags that were set explicitly
// and builds the observer.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("unescape-depth") {
		cfg.UnescapeDepth = a.unescapeDepth
	}
	if flags.Changed("duplicates") {
		if cfg.Duplicates, err = shellvars.ParseDuplicatePolicy(a.duplicates); err != nil {
			return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
		}
	}
	if flags.Changed("repair") {
		cfg.RepairJSON = a.repair
	}
	if flags.Lookup("output") != nil && flags.Changed("output") {
		if cfg.Output, err = report.ParseFormat(a.output); err != nil {
			return err
		}
	}
	if flags.Lookup("concurrency") != nil && flags.Changed("concurrency") {
		cfg.Concurrency = a.concurrency
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	opts := []slogobs.Option{slogobs.WithOutput(a.stderr)}
	if a.logLevel != "" {
		level, err := slogobs.ParseLogLevel(a.logLevel)
		if err != nil {
			return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
		}
		opts = append(opts, slogobs.WithLevel(level))
	}
	if a.logFormat != "" {
		format, ok := slogobs.ParseFormat(a.logFormat)
		if !ok {
			return fmt.Errorf("%w: unknown log format %q", config.ErrInvalidConfig, a.logFormat)
		}
		opts = append(opts, slogobs.WithFormat(format))
	}
	a.observer = slogobs.New(opts...)
	a.observer.Debug(cmd.Context(), "Configuration loaded",
		observability.String(observability.AttrCommand, cfg.OpenStackBin),
		observability.Int("concurrency", cfg.Concurrency),
		observability.Int("unescape_depth", cfg.UnescapeDepth),
		observability.Bool(observability.AttrRepair, cfg.RepairJSON),
	)
	return nil
}

func (a *app) parser() *reservation.Parser {
	return reservation.NewParser(
		reservation.WithDuplicatePolicy(a.cfg.Duplicates),
		reservation.WithUnescapeDepth(a.cfg.UnescapeDepth),
		reservation.WithRepair(a.cfg.RepairJSON),
		reservation.WithObserver(a.observer),
	)
}

func (a *app) client() *openstack.Client {
	runner := a.runner
	if runner == nil {
		runner = openstack.ExecRunner{Timeout: a.cfg.Timeout}
	}
	return openstack.NewClient(runner,
		openstack.WithBinary(a.cfg.OpenStackBin),
		openstack.WithObserver(a.observer),
	)
}

// finish writes the report and applies --strict.
func (a *app) finish(leases []*reservation.Lease, warnings int) error {
	if err := report.Write(a.stdout, a.cfg.Output, leases); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if a.strict && warnings > 0 {
		return fmt.Errorf("%w: %d", ErrWarnings, warnings)
	}
	return nil
}

func addOutputFlags(a *app, cmd *cobra.Command) {
	cmd.Flags().StringVarP(&a.output, "output", "o", "text", "report format: text, json, yaml, markdown")
	cmd.Flags().BoolVar(&a.strict, "strict", false, "exit non-zero when any warning was reported")
}
