package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"shadec/internal/astio"
	"shadec/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	ASTFormat int    `json:"ast_format"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show shadec build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		full, err := cmd.Flags().GetBool("full")
		if err != nil {
			return fmt.Errorf("failed to get full flag: %w", err)
		}
		st := settingsFrom(cmd)
		if st.format == formatJSON {
			return renderVersionJSON(cmd.OutOrStdout(), full)
		}
		renderVersionPretty(cmd.OutOrStdout(), full)
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("full", false, "include commit hash and build date")
}

func renderVersionPretty(out io.Writer, full bool) {
	fmt.Fprintf(out, "shadec %s (AST format v%d)\n", version.Colored(), astio.FormatVersion)
	if full {
		fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(version.GitCommit))
		fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(version.BuildDate))
	}
}

func renderVersionJSON(out io.Writer, full bool) error {
	payload := versionPayload{
		Tool:      "shadec",
		Version:   strings.TrimSpace(version.Version),
		ASTFormat: astio.FormatVersion,
	}
	if full {
		payload.GitCommit = valueOrUnknown(version.GitCommit)
		payload.BuildDate = valueOrUnknown(version.BuildDate)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func valueOrUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return s
}
