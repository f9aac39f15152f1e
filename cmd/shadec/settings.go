package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"shadec/internal/diagfmt"
)

type outputFormat string

const (
	formatPretty outputFormat = "pretty"
	formatJSON   outputFormat = "json"
	formatShort  outputFormat = "short"
)

func parseOutputFormat(value string) (outputFormat, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "pretty":
		return formatPretty, nil
	case "json":
		return formatJSON, nil
	case "short":
		return formatShort, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected pretty|json|short)", value)
	}
}

type colorMode string

const (
	colorAuto colorMode = "auto"
	colorOn   colorMode = "on"
	colorOff  colorMode = "off"
)

func readColorMode(value string) (colorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return colorAuto, nil
	case "on", "always":
		return colorOn, nil
	case "off", "never":
		return colorOff, nil
	default:
		return "", fmt.Errorf("invalid color value %q (expected auto|on|off)", value)
	}
}

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// settings is the manifest merged with command-line flags.
type settings struct {
	manifestPath string

	color          bool
	quiet          bool
	timings        bool
	maxDiagnostics int
	deepReturn     bool
	jobs           int
	ui             uiMode
	format         outputFormat
	pathMode       diagfmt.PathMode
	notes          bool

	traceLevel  string
	traceOutput string

	cacheEnabled bool
	cacheDir     string
}

func defaultSettings() settings {
	return settings{
		maxDiagnostics: 100,
		ui:             uiModeAuto,
		format:         formatPretty,
		pathMode:       diagfmt.PathModeAuto,
		notes:          true,
		traceLevel:     "off",
	}
}

// applyManifest copies every value the manifest sets. Color stays a mode
// string until flags are merged.
func (s *settings) applyManifest(m *projectManifest, colorValue *string) {
	if m == nil {
		return
	}
	cfg := m.Config
	s.manifestPath = m.Path
	s.deepReturn = cfg.Check.DeepReturnCheck
	if cfg.Check.MaxDiagnostics > 0 {
		s.maxDiagnostics = cfg.Check.MaxDiagnostics
	}
	s.jobs = cfg.Check.Jobs
	if cfg.Output.Format != "" {
		s.format, _ = parseOutputFormat(cfg.Output.Format)
	}
	if cfg.Output.Color != "" {
		*colorValue = cfg.Output.Color
	}
	s.pathMode, _ = diagfmt.ParsePathMode(cfg.Output.PathMode)
	if cfg.Output.Notes != nil {
		s.notes = *cfg.Output.Notes
	}
	if cfg.Trace.Level != "" {
		s.traceLevel = cfg.Trace.Level
	}
	s.traceOutput = cfg.Trace.Output
	s.cacheEnabled = cfg.Cache.Enabled
	s.cacheDir = cfg.Cache.Dir
}

// resolveSettings loads the manifest above the working directory and lets
// explicitly passed flags win over it.
func resolveSettings(cmd *cobra.Command) (settings, error) {
	st := defaultSettings()
	colorValue := "auto"

	manifest, _, err := loadProjectManifest(".")
	if err != nil {
		return st, err
	}
	st.applyManifest(manifest, &colorValue)

	flags := cmd.Root().PersistentFlags()
	if flags.Changed("color") {
		colorValue, _ = flags.GetString("color")
	}
	if flags.Changed("quiet") {
		st.quiet, _ = flags.GetBool("quiet")
	}
	if flags.Changed("timings") {
		st.timings, _ = flags.GetBool("timings")
	}
	if flags.Changed("max-diagnostics") {
		st.maxDiagnostics, _ = flags.GetInt("max-diagnostics")
	}
	if flags.Changed("deep-return-check") {
		st.deepReturn, _ = flags.GetBool("deep-return-check")
	}
	if flags.Changed("jobs") {
		st.jobs, _ = flags.GetInt("jobs")
	}
	if flags.Changed("format") {
		v, _ := flags.GetString("format")
		if st.format, err = parseOutputFormat(v); err != nil {
			return st, err
		}
	}
	if flags.Changed("path-mode") {
		v, _ := flags.GetString("path-mode")
		var ok bool
		if st.pathMode, ok = diagfmt.ParsePathMode(v); !ok {
			return st, fmt.Errorf("invalid --path-mode value %q (expected auto|absolute|basename)", v)
		}
	}
	if flags.Changed("trace") {
		st.traceOutput, _ = flags.GetString("trace")
		if !flags.Changed("trace-level") && st.traceLevel == "off" {
			st.traceLevel = "phase"
		}
	}
	if flags.Changed("trace-level") {
		st.traceLevel, _ = flags.GetString("trace-level")
	}
	if flags.Changed("cache") {
		st.cacheEnabled, _ = flags.GetBool("cache")
	}
	uiValue, _ := flags.GetString("ui")
	if st.ui, err = readUIMode(uiValue); err != nil {
		return st, err
	}
	if st.maxDiagnostics < 0 || st.jobs < 0 {
		return st, fmt.Errorf("--max-diagnostics and --jobs must be >= 0")
	}

	mode, err := readColorMode(colorValue)
	if err != nil {
		return st, err
	}
	st.color = shouldUseColor(mode)
	return st, nil
}

func shouldUseColor(mode colorMode) bool {
	switch mode {
	case colorOn:
		return true
	case colorOff:
		return false
	default:
		return os.Getenv("NO_COLOR") == "" && isTerminal(os.Stdout)
	}
}

func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

type settingsKey struct{}

func withSettings(ctx context.Context, st settings) context.Context {
	return context.WithValue(ctx, settingsKey{}, st)
}

// settingsFrom falls back to defaults for commands run without the root pre-run hook.
func settingsFrom(cmd *cobra.Command) settings {
	if st, ok := cmd.Context().Value(settingsKey{}).(settings); ok {
		return st
	}
	return defaultSettings()
}

// applyColor sets the process-wide fatih/color switch used by version output.
func applyColor(st settings) {
	color.NoColor = !st.color
}
