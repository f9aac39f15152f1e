package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"shadec/internal/version"
)

// errHasErrors signals a run that completed but reported error diagnostics.
var errHasErrors = errors.New("errors reported")

var rootCmd = &cobra.Command{
	Use:           "shadec",
	Short:         "Shading language checker and MIR lowerer",
	Long:          `shadec reads ASTs produced by an external parser, type-checks them and lowers them to a typed IR`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		st, err := resolveSettings(cmd)
		if err != nil {
			return err
		}
		applyColor(st)
		cmd.SetContext(withSettings(cmd.Context(), st))
		stopProfiling, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		cleanups = append(cleanups, stopProfiling)
		cleanup, err := setupTracing(cmd, st)
		if err != nil {
			return err
		}
		cleanups = append(cleanups, cleanup)
		return nil
	},
}

// cleanups run after Execute; PostRun hooks are skipped when RunE fails.
var cleanups []func()

func runCleanups() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(lowerCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics per file (0 = unlimited)")
	pf.Bool("deep-return-check", false, "require a return on every path of non-void functions")
	pf.Int("jobs", 0, "max parallel workers for directory runs (0=auto)")
	pf.String("ui", "auto", "progress UI for multi-file runs (auto|on|off)")
	pf.String("format", "pretty", "diagnostic output format (pretty|json|short)")
	pf.String("path-mode", "auto", "how to print file paths (auto|absolute|basename)")
	pf.Bool("cache", false, "reuse diagnostics from the on-disk cache")
	pf.String("trace", "", "write trace events to this file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "events kept in memory for crash dumps")
	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")
}

func main() {
	rootCmd.Version = version.Version
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	runCleanups()
	if err != nil {
		if !errors.Is(err, errHasErrors) {
			fmt.Fprintf(os.Stderr, "shadec: %v\n", err)
		}
		os.Exit(1)
	}
}
