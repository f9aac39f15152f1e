package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shadec/internal/astio"
	"shadec/internal/driver"
	"shadec/internal/mir"
)

var lowerCmd = &cobra.Command{
	Use:   "lower [flags] <file.ast.json|file.astpack>",
	Short: "Check an AST document and print its MIR",
	Long: `Check an AST document and, when it is free of errors, lower it to MIR and
print the module. Diagnostics are printed instead when the check fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runLower,
}

func init() {
	lowerCmd.Flags().Bool("spans", false, "annotate functions with their source spans")
	lowerCmd.Flags().String("emit-ast", "", "re-encode the decoded AST to this path (.ast.json or .astpack)")
	lowerCmd.Flags().StringP("output", "o", "", "write the MIR dump to a file instead of stdout")
}

func runLower(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	st := settingsFrom(cmd)
	spans, err := cmd.Flags().GetBool("spans")
	if err != nil {
		return fmt.Errorf("failed to get spans flag: %w", err)
	}
	emitAST, err := cmd.Flags().GetString("emit-ast")
	if err != nil {
		return fmt.Errorf("failed to get emit-ast flag: %w", err)
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}

	opts := driver.Options{
		MaxDiagnostics:  st.maxDiagnostics,
		DeepReturnCheck: st.deepReturn,
		EnableTimings:   st.timings,
		Lower:           true,
	}
	res, err := driver.DiagnoseFile(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}

	if emitAST != "" && res.Builder != nil {
		src := res.FileSet.Get(res.Source)
		doc := astio.Encode(res.Builder, res.File, src.Path, string(src.Content))
		if err := astio.WriteFile(emitAST, doc); err != nil {
			return fmt.Errorf("failed to write %s: %w", emitAST, err)
		}
	}

	if res.Module == nil || res.Bag.Len() > 0 {
		// предупреждения и ошибки печатаем как в check
		quiet := st
		quiet.quiet = true
		if err := reportResults(cmd.OutOrStdout(), cmd.ErrOrStderr(), []*driver.Result{res}, quiet); err != nil {
			return err
		}
		if res.Module == nil {
			return errHasErrors
		}
	}

	out := cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return mir.DumpModule(out, res.Module, mir.DumpOptions{Spans: spans})
}
