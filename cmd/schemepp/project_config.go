package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const configFileName = "schemepp.toml"

// projectConfig mirrors schemepp.toml. Only keys present in the file override
// defaults, so every field is applied through toml.MetaData.IsDefined.
type projectConfig struct {
	Expand      expandConfig      `toml:"expand"`
	Diagnostics diagnosticsConfig `toml:"diagnostics"`
	Trace       traceConfig       `toml:"trace"`
}

type expandConfig struct {
	Introducer  string `toml:"introducer"`
	LineMarkers bool   `toml:"line_markers"`
	MaxDepth    int    `toml:"max_depth"`
}

type diagnosticsConfig struct {
	Format   string `toml:"format"`
	Color    string `toml:"color"`
	PathMode string `toml:"path_mode"`
	Max      int    `toml:"max"`
}

type traceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
}

// loadedConfig is a decoded file together with what it actually sets.
type loadedConfig struct {
	Path   string
	Config projectConfig
	meta   toml.MetaData
}

// Has reports whether the file defines the dotted key, e.g. has("expand", "introducer").
func (c *loadedConfig) Has(key ...string) bool {
	return c != nil && c.meta.IsDefined(key...)
}

// findConfig walks up from startDir looking for schemepp.toml.
func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
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

// loadConfig decodes an explicit path, or the discovered file when path is
// empty. A missing discovered file is not an error and yields nil.
func loadConfig(path, startDir string) (*loadedConfig, error) {
	if path == "" {
		found, ok, err := findConfig(startDir)
		if err != nil || !ok {
			return nil, err
		}
		path = found
	}

	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("expand", "max_depth") && cfg.Expand.MaxDepth < 0 {
		return nil, fmt.Errorf("%s: [expand].max_depth must not be negative", path)
	}
	if meta.IsDefined("diagnostics", "max") && cfg.Diagnostics.Max < 0 {
		return nil, fmt.Errorf("%s: [diagnostics].max must not be negative", path)
	}
	return &loadedConfig{Path: path, Config: cfg, meta: meta}, nil
}
