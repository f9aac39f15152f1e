package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a default shadec.toml",
	Long: `Create a shadec.toml manifest with default settings in dir (the current
directory by default). The directory is created when missing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	path, err := initProject(target)
	if err != nil {
		return err
	}
	if !settingsFrom(cmd).quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
	}
	return nil
}

// initProject refuses to overwrite an existing manifest.
func initProject(target string) (string, error) {
	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		if err = os.MkdirAll(target, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return "", fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, manifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return "", fmt.Errorf("already initialized: %s exists", manifestPath)
	}
	if err := os.WriteFile(manifestPath, []byte(defaultManifest()), 0o600); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return manifestPath, nil
}
