package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"schemepp/internal/diag"
	"schemepp/internal/diagfmt"
	"schemepp/internal/driver"
	"schemepp/internal/expand"
	"schemepp/internal/observ"
	"schemepp/internal/source"
	"schemepp/internal/srcmap"
)

func runExpand(cmd *cobra.Command, args []string) error {
	stderr := cmd.ErrOrStderr()
	if len(args) == 0 {
		fmt.Fprintln(stderr, usageLine)
		return exitError{code: 1}
	}

	s, err := resolveSettings(cmd)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError{code: 1}
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError{code: 1}
	}
	defer stopProfiling()

	cleanup, err := setupTracing(cmd, s)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError{code: 1}
	}
	defer cleanup()

	fs := source.NewFileSet()
	if wd, err := os.Getwd(); err == nil {
		fs.SetBaseDir(wd)
	}
	colored := s.useColor(os.Stderr)
	streamer := diagfmt.NewStreamer(stderr, fs, diagfmt.StreamerOpts{
		Format: s.DiagFormat,
		Pretty: diagfmt.PrettyOpts{
			Color:     colored,
			PathMode:  s.PathMode,
			BaseDir:   fs.BaseDir(),
			ShowNotes: true,
		},
		JSON: diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         s.PathMode,
			BaseDir:          fs.BaseDir(),
			Max:              s.MaxDiagnostics,
			IncludeNotes:     true,
		},
	})

	out, closeOut, err := openOutput(cmd, s.Output)
	if err != nil {
		streamer.Report(diag.NewError(diag.IOWriteError, err.Error()))
		_ = streamer.Finish()
		return exitError{code: 1}
	}

	var smap *srcmap.Builder
	if s.MapPath != "" {
		smap = srcmap.NewBuilder()
	}
	var timer *observ.Timer
	if s.Timings {
		timer = observ.NewTimer()
	}

	res, runErr := driver.Run(cmd.Context(), out, fs, args, driver.Options{
		Introducer:  s.Introducer,
		LineMarkers: s.LineMarkers,
		Reporter:    streamer,
		Map:         smap,
		Timer:       timer,
		MaxDepth:    s.MaxDepth,
	})
	failed := res.Failed
	if runErr != nil {
		code := diag.UnknownCode
		if errors.Is(runErr, expand.ErrOutput) {
			code = diag.IOWriteError
		}
		streamer.Report(diag.NewError(code, runErr.Error()))
		failed = true
	}
	if err := closeOut(); err != nil {
		streamer.Report(diag.NewError(diag.IOWriteError, err.Error()))
		failed = true
	}

	// карта пишется и при неудаче: она описывает обработанные файлы
	if smap != nil {
		if err := srcmap.Write(s.MapPath, smap.Map()); err != nil {
			streamer.Report(diag.NewError(diag.IOWriteError, err.Error()))
			failed = true
		}
	}
	if timer != nil {
		if err := printTimings(stderr, timer.Report(), colored); err != nil {
			failed = true
		}
	}
	if err := streamer.Finish(); err != nil {
		failed = true
	}

	if failed {
		return exitError{code: 1}
	}
	return nil
}

// openOutput returns the expansion destination and a function that closes it.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	// #nosec G304 -- path is provided by the user via --output
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, f.Close, nil
}
