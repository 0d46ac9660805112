package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"schemepp/internal/diagfmt"
	"schemepp/internal/expand"
	"schemepp/internal/trace"
)

// settings is the effective configuration of one invocation:
// defaults, then schemepp.toml, then flags that were set explicitly.
type settings struct {
	Output         string
	Introducer     byte
	LineMarkers    bool
	MaxDepth       int
	DiagFormat     diagfmt.Format
	Color          string // auto|on|off
	PathMode       diagfmt.PathMode
	MaxDiagnostics int
	MapPath        string
	TraceOutput    string
	TraceLevel     trace.Level
	TraceHeartbeat time.Duration
	Timings        bool
	ConfigPath     string // empty when no file was used
}

// raw string values are parsed once, after all layers are applied.
type rawSettings struct {
	introducer string
	diagFormat string
	color      string
	pathMode   string
	traceLevel string
}

func defaultSettings() (settings, rawSettings) {
	return settings{LineMarkers: true}, rawSettings{
		introducer: string(expand.DefaultIntroducer),
		diagFormat: "plain",
		color:      "auto",
		pathMode:   "as-is",
		traceLevel: "off",
	}
}

func resolveSettings(cmd *cobra.Command) (settings, error) {
	s, raw := defaultSettings()
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return s, fmt.Errorf("failed to get config flag: %w", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return s, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := loadConfig(configPath, wd)
	if err != nil {
		return s, err
	}
	if cfg != nil {
		s.ConfigPath = cfg.Path
		applyConfig(&s, &raw, cfg)
	}

	// флаги, заданные явно, перекрывают файл
	if flags.Changed("output") {
		s.Output, _ = flags.GetString("output")
	}
	if flags.Changed("introducer") {
		raw.introducer, _ = flags.GetString("introducer")
	}
	if flags.Changed("no-line-markers") {
		noMarkers, _ := flags.GetBool("no-line-markers")
		s.LineMarkers = !noMarkers
	}
	if flags.Changed("diag-format") {
		raw.diagFormat, _ = flags.GetString("diag-format")
	}
	if flags.Changed("color") {
		raw.color, _ = flags.GetString("color")
	}
	if flags.Changed("path-mode") {
		raw.pathMode, _ = flags.GetString("path-mode")
	}
	if flags.Changed("max-diagnostics") {
		s.MaxDiagnostics, _ = flags.GetInt("max-diagnostics")
	}
	if flags.Changed("trace") {
		s.TraceOutput, _ = flags.GetString("trace")
	}
	if flags.Changed("trace-level") {
		raw.traceLevel, _ = flags.GetString("trace-level")
	}
	s.MapPath, _ = flags.GetString("map")
	s.TraceHeartbeat, _ = flags.GetDuration("trace-heartbeat")
	s.Timings, _ = flags.GetBool("timings")

	if err := parseRaw(&s, raw); err != nil {
		if s.ConfigPath != "" {
			return s, fmt.Errorf("%w (config: %s)", err, s.ConfigPath)
		}
		return s, err
	}
	if s.MaxDiagnostics < 0 {
		return s, fmt.Errorf("--max-diagnostics must not be negative")
	}
	// trace output without an explicit level traces whole files
	if s.TraceOutput != "" && s.TraceLevel == trace.LevelOff && !flags.Changed("trace-level") && !cfg.Has("trace", "level") {
		s.TraceLevel = trace.LevelFile
	}
	return s, nil
}

func applyConfig(s *settings, raw *rawSettings, cfg *loadedConfig) {
	c := cfg.Config
	if cfg.Has("expand", "introducer") {
		raw.introducer = c.Expand.Introducer
	}
	if cfg.Has("expand", "line_markers") {
		s.LineMarkers = c.Expand.LineMarkers
	}
	if cfg.Has("expand", "max_depth") {
		s.MaxDepth = c.Expand.MaxDepth
	}
	if cfg.Has("diagnostics", "format") {
		raw.diagFormat = c.Diagnostics.Format
	}
	if cfg.Has("diagnostics", "color") {
		raw.color = c.Diagnostics.Color
	}
	if cfg.Has("diagnostics", "path_mode") {
		raw.pathMode = c.Diagnostics.PathMode
	}
	if cfg.Has("diagnostics", "max") {
		s.MaxDiagnostics = c.Diagnostics.Max
	}
	if cfg.Has("trace", "level") {
		raw.traceLevel = c.Trace.Level
	}
	if cfg.Has("trace", "output") {
		s.TraceOutput = c.Trace.Output
	}
}

func parseRaw(s *settings, raw rawSettings) error {
	intro, err := parseIntroducer(raw.introducer)
	if err != nil {
		return err
	}
	s.Introducer = intro

	if s.DiagFormat, err = diagfmt.ParseFormat(raw.diagFormat); err != nil {
		return err
	}
	if s.PathMode, err = diagfmt.ParsePathMode(raw.pathMode); err != nil {
		return err
	}
	if s.TraceLevel, err = trace.ParseLevel(raw.traceLevel); err != nil {
		return fmt.Errorf("invalid trace level: %w", err)
	}

	switch color := strings.ToLower(raw.color); color {
	case "auto", "on", "off":
		s.Color = color
	default:
		return fmt.Errorf("invalid color mode: %q (expected: auto|on|off)", raw.color)
	}
	return nil
}

func parseIntroducer(v string) (byte, error) {
	if len(v) != 1 {
		return 0, fmt.Errorf("introducer must be a single byte, got %q", v)
	}
	if err := expand.ValidateIntroducer(v[0]); err != nil {
		return 0, err
	}
	return v[0], nil
}

// useColor resolves "auto" against the stream the coloured text goes to.
func (s settings) useColor(f *os.File) bool {
	switch s.Color {
	case "on":
		return true
	case "off":
		return false
	}
	return isTerminal(f)
}
