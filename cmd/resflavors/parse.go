package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leofalp/resflavors/core/reservation"
	"github.com/leofalp/resflavors/providers/observability"
)

const stdinName = "-"

func newParseCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "parse [FILE|-]",
		Short: "Parse a saved lease dump",
		Long: `Parses the output of "openstack reservation lease show <id> -f shell" read
from FILE, or from standard input when FILE is "-" or omitted.

With --watch the file is parsed again every time it changes, until
interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := stdinName
			if len(args) == 1 {
				source = args[0]
			}
			if watch {
				if source == stdinName {
					return fmt.Errorf("--watch needs a file, not standard input")
				}
				return a.watchDump(cmd.Context(), source)
			}
			return a.parseDump(cmd.Context(), source)
		},
	}
	addOutputFlags(a, cmd)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "parse again whenever FILE changes")
	return cmd
}

func (a *app) parseDump(ctx context.Context, source string) error {
	dump, err := a.readDump(source)
	if err != nil {
		return err
	}
	a.observer.Debug(ctx, "Parsing dump",
		observability.String(observability.AttrSource, source),
		observability.Int(observability.AttrOutputBytes, len(dump)),
	)

	lease := a.parser().Parse(ctx, leaseIDFromSource(source), dump)
	return a.finish([]*reservation.Lease{lease}, len(lease.Warnings))
}

func (a *app) readDump(source string) (string, error) {
	var (
		data []byte
		err  error
	)
	if source == stdinName {
		data, err = io.ReadAll(a.stdin)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return "", fmt.Errorf("read dump %s: %w", source, err)
	}
	return string(data), nil
}

// leaseIDFromSource names a parsed dump after its file, without extension.
func leaseIDFromSource(source string) string {
	if source == stdinName {
		return "stdin"
	}
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
