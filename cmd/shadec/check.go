package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"shadec/internal/diag"
	"shadec/internal/diagfmt"
	"shadec/internal/driver"
	"shadec/internal/observ"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.ast.json|file.astpack|directory]...",
	Short: "Type-check AST documents",
	Long: `Decode AST documents, run semantic checks and print diagnostics.
Directories are searched recursively for *.ast.json and *.astpack files.
Without arguments the current directory is checked.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("lower", false, "also lower clean files to MIR and validate the result")
}

func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	st := settingsFrom(cmd)
	lower, err := cmd.Flags().GetBool("lower")
	if err != nil {
		return fmt.Errorf("failed to get lower flag: %w", err)
	}
	if len(args) == 0 {
		args = []string{"."}
	}
	files, err := collectDocuments(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		if !st.quiet {
			fmt.Fprintln(cmd.ErrOrStderr(), "no AST documents found")
		}
		return nil
	}

	opts, err := driverOptions(st)
	if err != nil {
		return err
	}
	opts.Lower = lower

	var results []*driver.Result
	if len(files) > 1 && !st.quiet && st.format == formatPretty && shouldUseTUI(st.ui) {
		results, err = runCheckWithUI(cmd.Context(), files, opts, st.jobs)
	} else {
		results, err = driver.DiagnoseFiles(cmd.Context(), files, opts, st.jobs)
	}
	if err != nil {
		return err
	}
	return reportResults(cmd.OutOrStdout(), cmd.ErrOrStderr(), results, st)
}

// collectDocuments expands directories and keeps explicit files as given.
func collectDocuments(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := driver.ListDocuments(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", arg, err)
		}
		files = append(files, found...)
	}
	return files, nil
}

func driverOptions(st settings) (driver.Options, error) {
	opts := driver.Options{
		MaxDiagnostics:  st.maxDiagnostics,
		DeepReturnCheck: st.deepReturn,
		EnableTimings:   st.timings,
	}
	if st.cacheEnabled {
		cache, err := driver.OpenDiskCache(st.cacheDir, "shadec")
		if err != nil {
			return opts, fmt.Errorf("failed to open cache: %w", err)
		}
		opts.Cache = cache
	}
	return opts, nil
}

type fileReport struct {
	Path        string                    `json:"path"`
	Error       string                    `json:"error,omitempty"`
	Cached      bool                      `json:"cached,omitempty"`
	Diagnostics diagfmt.DiagnosticsOutput `json:"diagnostics"`
	Timings     *observ.Report            `json:"timings,omitempty"`
}

// reportResults prints every result in the chosen format and returns
// errHasErrors when any file failed.
func reportResults(out, errOut io.Writer, results []*driver.Result, st settings) error {
	total := diag.NewBag(0)
	failed := false
	baseDir, _ := os.Getwd()
	var reports []fileReport

	for _, r := range results {
		if r == nil {
			continue
		}
		if r.HasErrors() {
			failed = true
		}
		if r.Err != nil {
			if st.format == formatJSON {
				reports = append(reports, fileReport{Path: r.Path, Error: r.Err.Error()})
			} else {
				fmt.Fprintf(errOut, "%s: %v\n", r.Path, r.Err)
			}
			continue
		}
		total.Merge(r.Bag)

		switch st.format {
		case formatJSON:
			rep := fileReport{
				Path:   r.Path,
				Cached: r.Cached,
				Diagnostics: diagfmt.BuildDiagnosticsOutput(r.Bag, r.FileSet, diagfmt.JSONOpts{
					IncludePositions: true,
					PathMode:         st.pathMode,
					BaseDir:          baseDir,
					IncludeNotes:     st.notes,
				}),
			}
			if st.timings {
				report := r.Timer.Report()
				rep.Timings = &report
			}
			reports = append(reports, rep)
		case formatShort:
			io.WriteString(out, diag.FormatShort(r.Bag.Items(), r.FileSet, st.notes))
		default:
			err := diagfmt.Pretty(out, r.Bag, r.FileSet, diagfmt.PrettyOpts{
				Color:     st.color,
				PathMode:  st.pathMode,
				BaseDir:   baseDir,
				ShowNotes: st.notes,
			})
			if err != nil {
				return err
			}
		}
		if n := r.Bag.Dropped(); n > 0 && st.format != formatJSON {
			fmt.Fprintf(errOut, "%s: %d more diagnostic(s) not shown (--max-diagnostics=%d)\n",
				displayName(r.Path, baseDir), n, st.maxDiagnostics)
		}
		if st.timings && st.format != formatJSON {
			fmt.Fprintf(errOut, "%s\n%s", displayName(r.Path, baseDir), r.Timer.Summary())
		}
	}

	if st.format == formatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			Files []fileReport `json:"files"`
		}{reports}); err != nil {
			return err
		}
	} else if !st.quiet {
		fmt.Fprintf(errOut, "checked %d file(s): %s\n", len(results), diagfmt.Summary(total))
	}
	if failed {
		return errHasErrors
	}
	return nil
}

func displayName(path, base string) string {
	if rel, err := filepath.Rel(base, path); err == nil && len(rel) < len(path) {
		return rel
	}
	return path
}

// runCheckWithUI runs the driver in the background and renders its events.
func runCheckWithUI(ctx context.Context, files []string, opts driver.Options, jobs int) ([]*driver.Result, error) {
	return runWithUI(ctx, "checking", files, func(sink driver.ProgressSink) ([]*driver.Result, error) {
		opts.Sink = sink
		return driver.DiagnoseFiles(ctx, files, opts, jobs)
	})
}
