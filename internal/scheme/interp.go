package scheme

import (
	"errors"
	"io"
)

// ErrorHook is called synchronously with the formatted message of every failed
// evaluation. Returning a non-nil value recovers: Eval yields that value and a
// nil error. Returning nil lets the error propagate.
type ErrorHook func(msg string) Value

// Option configures an Interp.
type Option func(*Interp)

// WithOutput sets the writer used by display, write, newline and format #t.
func WithOutput(w io.Writer) Option {
	return func(in *Interp) { in.out = w }
}

// WithMaxDepth limits nested non-tail evaluation; 0 disables the limit.
func WithMaxDepth(n int) Option {
	return func(in *Interp) { in.maxDepth = n }
}

// Interp is one evaluator instance with a single global environment. It is not
// safe for concurrent use.
type Interp struct {
	global   *Env
	out      io.Writer
	hook     ErrorHook
	depth    int
	maxDepth int
}

const defaultMaxDepth = 10000

// New creates an interpreter with every builtin defined.
func New(opts ...Option) *Interp {
	in := &Interp{
		global:   NewEnv(nil),
		out:      io.Discard,
		maxDepth: defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(in)
	}
	for _, b := range builtins() {
		in.global.Define(Symbol(b.Name), b)
	}
	return in
}

// SetOutput replaces the output writer.
func (in *Interp) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	in.out = w
}

// SetErrorHook installs hook, replacing any previous one. nil removes it.
func (in *Interp) SetErrorHook(hook ErrorHook) {
	in.hook = hook
}

// Define binds name in the global environment.
func (in *Interp) Define(name string, v Value) {
	in.global.Define(Symbol(name), v)
}

// Lookup returns the global binding of name.
func (in *Interp) Lookup(name string) (Value, bool) {
	return in.global.Lookup(Symbol(name))
}

// Eval reads every datum in src and evaluates them in order in the global
// environment, returning the value of the last one. The first failure stops
// evaluation and is offered to the error hook.
func (in *Interp) Eval(src string) (Value, error) {
	forms, err := NewReader(src).ReadAll()
	if err != nil {
		return in.fail(err)
	}
	var result Value = Unspecified
	for _, form := range forms {
		in.depth = 0
		v, err := in.eval(form, in.global)
		if err != nil {
			return in.fail(err)
		}
		result = v
	}
	return result, nil
}

func (in *Interp) fail(err error) (Value, error) {
	if in.hook == nil {
		return nil, err
	}
	msg := err.Error()
	var serr *Error
	if errors.As(err, &serr) {
		msg = serr.Msg
	}
	if v := in.hook(msg); v != nil {
		return v, nil
	}
	return nil, err
}

// Display renders v the way display prints it.
func (in *Interp) Display(v Value) string {
	return Display(v)
}
