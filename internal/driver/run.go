// Package driver runs the expansion over a list of files: it loads them in
// order, feeds them through one expander sharing one Scheme interpreter and
// stops after the first file that fails.
package driver

import (
	"context"
	"errors"
	"io"
	"strconv"

	"schemepp/internal/diag"
	"schemepp/internal/expand"
	"schemepp/internal/observ"
	"schemepp/internal/scheme"
	"schemepp/internal/source"
	"schemepp/internal/srcmap"
	"schemepp/internal/trace"
)

// Options configures a run.
type Options struct {
	Introducer  byte // 0 means expand.DefaultIntroducer
	LineMarkers bool
	Reporter    diag.Reporter
	Map         *srcmap.Builder // optional expansion map
	Timer       *observ.Timer   // optional, nil-safe
	MaxDepth    int             // evaluator recursion limit, 0 keeps the default
}

// FileResult summarizes one processed file.
type FileResult struct {
	Path         string
	Regions      int
	SyntaxFailed bool
	EvalFailed   bool
}

// Result summarizes a run. Failed is set once any diagnostic of error
// severity has been reported; files after the failing one are not read.
type Result struct {
	Files  []FileResult
	Failed bool
}

// ExitCode maps the result to the process exit status.
func (r Result) ExitCode() int {
	if r.Failed {
		return 1
	}
	return 0
}

// Run expands paths in order into out. Read, syntax and evaluator failures
// are reported through opts.Reporter and end the run with Result.Failed.
// The returned error is reserved for what was not reported: invalid options,
// output write failures (wrapping expand.ErrOutput) and context cancellation.
func Run(ctx context.Context, out io.Writer, fs *source.FileSet, paths []string, opts Options) (res Result, err error) {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeRun, "run", trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)
	defer func() {
		span.WithExtra("files", strconv.Itoa(len(res.Files)))
		if err != nil || res.Failed {
			span.Fail()
		}
		span.End("")
	}()

	il := expand.NewInterleaver(out, opts.LineMarkers)
	interpOpts := []scheme.Option{scheme.WithOutput(il.Direct())}
	if opts.MaxDepth > 0 {
		interpOpts = append(interpOpts, scheme.WithMaxDepth(opts.MaxDepth))
	}
	expOpts := expand.Options{
		Introducer:  opts.Introducer,
		LineMarkers: opts.LineMarkers,
		Reporter:    reporter,
	}
	if opts.Map != nil {
		expOpts.Recorder = opts.Map
	}
	exp, err := expand.New(il, scheme.New(interpOpts...), expOpts)
	if err != nil {
		return res, err
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		f, ok := load(fs, path, reporter, opts.Timer)
		if !ok {
			res.Failed = true
			return res, nil
		}
		if opts.Map != nil {
			opts.Map.AddFile(f)
		}

		idx := opts.Timer.Begin("expand", path)
		fr, err := exp.Expand(ctx, f)
		file := FileResult{Path: path, Regions: fr.Regions, EvalFailed: fr.EvalFailed}
		var serr *expand.SyntaxError
		file.SyntaxFailed = errors.As(err, &serr)
		res.Files = append(res.Files, file)
		opts.Timer.End(idx, fileNote(file))

		switch {
		case err != nil && (!file.SyntaxFailed || errors.Is(err, expand.ErrOutput)):
			res.Failed = res.Failed || file.SyntaxFailed || file.EvalFailed
			return res, err
		case file.SyntaxFailed || file.EvalFailed:
			// дальше не идём: как и раньше, первый упавший файл завершает прогон
			res.Failed = true
			return res, nil
		}
	}
	return res, nil
}

// load reads path into fs, turning a *source.ReadError into a diagnostic.
func load(fs *source.FileSet, path string, reporter diag.Reporter, timer *observ.Timer) (*source.File, bool) {
	idx := timer.Begin("load", path)
	id, err := fs.Load(path)
	if err != nil {
		timer.End(idx, "failed")
		reason := err.Error()
		var rerr *source.ReadError
		if errors.As(err, &rerr) {
			reason = rerr.Reason
		}
		reporter.Report(diag.NewError(diag.IOLoadFileError, reason).At(path, 0))
		return nil, false
	}
	f := fs.Get(id)
	timer.End(idx, strconv.Itoa(len(f.Content))+" bytes")
	return f, true
}

func fileNote(f FileResult) string {
	note := strconv.Itoa(f.Regions) + " regions"
	switch {
	case f.SyntaxFailed:
		note += ", syntax error"
	case f.EvalFailed:
		note += ", eval error"
	}
	return note
}
