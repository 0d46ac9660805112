package expand

import (
	"errors"

	"schemepp/internal/diag"
	"schemepp/internal/scheme"
	"schemepp/internal/source"
)

// Evaluator is the embedded script engine. *scheme.Interp implements it.
type Evaluator interface {
	Eval(src string) (scheme.Value, error)
	Display(v scheme.Value) string
	SetErrorHook(hook scheme.ErrorHook)
}

// Position is where evaluator failures are attributed: the file being
// expanded and the tracked line at the moment the region closed.
type Position struct {
	Path string
	Line uint32
	Span source.Span
}

// Outcome of one region evaluation. Text is empty for silent and failed regions.
type Outcome struct {
	Text   string
	Failed bool
}

// Bridge hands region text to the evaluator and turns its failures into
// diagnostics. It owns the evaluator's error hook for as long as it lives.
type Bridge struct {
	ev       Evaluator
	reporter diag.Reporter
	scratch  []byte
	at       Position
	failed   bool
}

// NewBridge installs the error hook on ev.
func NewBridge(ev Evaluator, reporter diag.Reporter) *Bridge {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	b := &Bridge{ev: ev, reporter: reporter}
	ev.SetErrorHook(b.hook)
	return b
}

// hook runs synchronously inside Eval; b.at is the position of that call.
func (b *Bridge) hook(msg string) scheme.Value {
	b.report(msg)
	return scheme.Unspecified
}

func (b *Bridge) report(msg string) {
	if b.failed {
		return
	}
	b.failed = true
	d := diag.NewError(diag.EvalError, msg).At(b.at.Path, b.at.Line)
	if !b.at.Span.Empty() {
		d = d.WithSpan(b.at.Span)
	}
	b.reporter.Report(d)
}

// Eval wraps inner in parentheses and evaluates it once.
func (b *Bridge) Eval(kind Kind, inner []byte, at Position) Outcome {
	b.scratch = append(b.scratch[:0], '(')
	b.scratch = append(b.scratch, inner...)
	b.scratch = append(b.scratch, ')')
	b.at = at
	b.failed = false

	v, err := b.ev.Eval(string(b.scratch))
	if err != nil {
		// хук не вызывался (или отказался восстанавливаться), сообщаем сами
		msg := err.Error()
		var serr *scheme.Error
		if errors.As(err, &serr) {
			msg = serr.Msg
		}
		b.report(msg)
	}
	if b.failed {
		return Outcome{Failed: true}
	}
	if kind == KindSilent || v == nil {
		return Outcome{}
	}
	return Outcome{Text: b.ev.Display(v)}
}
