package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"shadec/internal/diagfmt"
	"shadec/internal/trace"
)

const manifestName = "shadec.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Check  checkConfig  `toml:"check"`
	Output outputConfig `toml:"output"`
	Trace  traceConfig  `toml:"trace"`
	Cache  cacheConfig  `toml:"cache"`
}

type checkConfig struct {
	DeepReturnCheck bool `toml:"deep_return_check"`
	MaxDiagnostics  int  `toml:"max_diagnostics"`
	Jobs            int  `toml:"jobs"`
}

type outputConfig struct {
	Format   string `toml:"format"`
	Color    string `toml:"color"`
	PathMode string `toml:"path_mode"`
	Notes    *bool  `toml:"notes"`
}

type traceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
}

type cacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectManifest returns (nil, false, nil) when no manifest exists up the tree.
func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return projectConfig{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return projectConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c projectConfig) validate() error {
	if c.Check.MaxDiagnostics < 0 {
		return fmt.Errorf("[check].max_diagnostics must be >= 0")
	}
	if c.Check.Jobs < 0 {
		return fmt.Errorf("[check].jobs must be >= 0")
	}
	if c.Output.Format != "" {
		if _, err := parseOutputFormat(c.Output.Format); err != nil {
			return fmt.Errorf("[output].format: %w", err)
		}
	}
	if c.Output.Color != "" {
		if _, err := readColorMode(c.Output.Color); err != nil {
			return fmt.Errorf("[output].color: %w", err)
		}
	}
	if _, ok := diagfmt.ParsePathMode(c.Output.PathMode); !ok {
		return fmt.Errorf("[output].path_mode: invalid value %q (expected auto|absolute|basename)", c.Output.PathMode)
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return fmt.Errorf("[trace].level: %w", err)
	}
	return nil
}

// defaultManifest is what `shadec init` writes.
func defaultManifest() string {
	return `# shadec project manifest; command-line flags override these values
[check]
deep_return_check = false
max_diagnostics = 100
jobs = 0

[output]
format = "pretty"
color = "auto"
path_mode = "auto"
notes = true

[trace]
level = "off"
output = ""

[cache]
enabled = false
dir = ""
`
}
