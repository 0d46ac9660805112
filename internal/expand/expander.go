package expand

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"schemepp/internal/diag"
	"schemepp/internal/source"
	"schemepp/internal/trace"
)

// DefaultIntroducer starts and ends every region unless configured otherwise.
const DefaultIntroducer = '$'

// Options configures an Expander.
type Options struct {
	Introducer  byte // 0 means DefaultIntroducer
	LineMarkers bool
	Reporter    diag.Reporter
	Recorder    Recorder // optional
}

// Recorder observes every evaluated region, e.g. to build an expansion map.
type Recorder interface {
	Record(f *source.File, r Region, o Outcome)
}

// Result summarizes one file.
type Result struct {
	Regions    int
	EvalFailed bool // at least one region failed to evaluate
}

// ErrOutput wraps failures writing the expansion.
var ErrOutput = errors.New("write output")

// Expander runs the scan loop over files, one at a time, sharing one
// evaluator and one output stream.
type Expander struct {
	opts   Options
	out    *Interleaver
	bridge *Bridge
}

// ValidateIntroducer reports whether b can introduce regions.
func ValidateIntroducer(b byte) error {
	switch {
	case b == '(' || b == ')' || b == '{' || b == '}':
		return fmt.Errorf("introducer %q clashes with a delimiter", b)
	case b >= 0x80:
		return fmt.Errorf("introducer %q must be ASCII", b)
	case unicode.IsSpace(rune(b)) || unicode.IsControl(rune(b)):
		return fmt.Errorf("introducer %q must be printable", b)
	}
	return nil
}

// New creates an expander writing to out and evaluating with ev.
func New(out *Interleaver, ev Evaluator, opts Options) (*Expander, error) {
	if opts.Introducer == 0 {
		opts.Introducer = DefaultIntroducer
	}
	if err := ValidateIntroducer(opts.Introducer); err != nil {
		return nil, err
	}
	if opts.Reporter == nil {
		opts.Reporter = diag.NopReporter{}
	}
	return &Expander{
		opts:   opts,
		out:    out,
		bridge: NewBridge(ev, opts.Reporter),
	}, nil
}

// Expand writes the expansion of f. A *SyntaxError stops the file and is
// both reported and returned; evaluator failures are reported, latched in
// Result.EvalFailed and the scan goes on. Write failures wrap ErrOutput.
func (e *Expander) Expand(ctx context.Context, f *source.File) (res Result, err error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "expand", trace.CurrentSpan(ctx))
	defer func() {
		span.WithExtra("regions", strconv.Itoa(res.Regions))
		if err != nil || res.EvalFailed {
			span.Fail()
		}
		span.End(f.Path)
	}()

	if err := e.out.Marker(f.Path); err != nil {
		return res, fmt.Errorf("%w: %w", ErrOutput, err)
	}

	cur := NewCursor(f)
	lines := NewLineTracker()
	sc := scanner{
		cur:   &cur,
		intro: e.opts.Introducer,
		lines: &lines,
		newline: func() error {
			return e.out.Newline()
		},
	}

	lit := cur.Mark()
	for !cur.EOF() {
		switch cur.Peek() {
		case '\n':
			lines.Advance()
			cur.Bump()
			continue
		case e.opts.Introducer:
		default:
			cur.Bump()
			continue
		}

		if err := e.out.Literal(cur.Bytes(lit)); err != nil {
			return res, fmt.Errorf("%w: %w", ErrOutput, err)
		}
		region, err := sc.scan()
		if err != nil {
			var serr *SyntaxError
			if errors.As(err, &serr) {
				e.opts.Reporter.Report(serr.Diagnostic(f.Path))
				// вывод до ошибки сохраняется
				if ferr := e.out.Flush(); ferr != nil {
					return res, errors.Join(serr, fmt.Errorf("%w: %w", ErrOutput, ferr))
				}
				return res, serr
			}
			return res, fmt.Errorf("%w: %w", ErrOutput, err)
		}
		res.Regions++

		outcome, err := e.evalRegion(tracer, span.ID(), f, region, lines.Line())
		if err != nil {
			return res, err
		}
		if outcome.Failed {
			res.EvalFailed = true
		}
		lit = cur.Mark()
	}

	if err := e.out.Literal(cur.Bytes(lit)); err != nil {
		return res, fmt.Errorf("%w: %w", ErrOutput, err)
	}
	if err := e.out.Flush(); err != nil {
		return res, fmt.Errorf("%w: %w", ErrOutput, err)
	}
	return res, nil
}

func (e *Expander) evalRegion(tracer trace.Tracer, parent uint64, f *source.File, region Region, line uint32) (Outcome, error) {
	span := trace.Begin(tracer, trace.ScopeRegion, region.Kind.String(), parent)

	// вычислитель пишет напрямую, поэтому всё накопленное уходит раньше него
	if err := e.out.Flush(); err != nil {
		span.Fail().End("")
		return Outcome{}, fmt.Errorf("%w: %w", ErrOutput, err)
	}
	outcome := e.bridge.Eval(region.Kind, region.InnerText(f), Position{
		Path: f.Path,
		Line: line,
		Span: region.Span,
	})
	if outcome.Text != "" {
		if err := e.out.Result(outcome.Text); err != nil {
			span.Fail().End("")
			return outcome, fmt.Errorf("%w: %w", ErrOutput, err)
		}
	}
	if e.opts.Recorder != nil {
		e.opts.Recorder.Record(f, region, outcome)
	}

	if outcome.Failed {
		span.Fail()
	}
	span.WithExtra("line", strconv.FormatUint(uint64(line), 10))
	span.End(fmt.Sprintf("%s:%d-%d", f.Path, region.StartLine, region.EndLine))
	return outcome, nil
}
