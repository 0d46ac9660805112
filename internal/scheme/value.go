package scheme

// Value is any Scheme datum.
type Value interface {
	kind() string
}

type (
	// Int is an exact integer.
	Int int64
	// Real is an inexact number.
	Real float64
	// Bool is #t or #f.
	Bool bool
	// Str is an immutable string.
	Str string
	// Symbol is an interned name.
	Symbol string
)

// Pair is a cons cell. Lists are chains of pairs ending in Nil.
type Pair struct {
	Car Value
	Cdr Value
}

type empty struct{}

type unspecified struct{}

// Builtin is a procedure implemented in Go.
type Builtin struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 for variadic
	Fn      func(in *Interp, args []Value) (Value, error)
}

// Lambda is a closure created by lambda or define.
type Lambda struct {
	Name   string
	Params []Symbol
	Rest   Symbol // empty when the lambda has no rest parameter
	Body   []Value
	Env    *Env
}

var (
	// Nil is the empty list.
	Nil Value = empty{}
	// Unspecified is returned by forms evaluated for effect. It displays as
	// nothing so a display region around (display ...) prints once.
	Unspecified Value = unspecified{}
	True        Value = Bool(true)
	False       Value = Bool(false)
)

func (Int) kind() string         { return "integer" }
func (Real) kind() string        { return "real" }
func (Bool) kind() string        { return "boolean" }
func (Str) kind() string         { return "string" }
func (Symbol) kind() string      { return "symbol" }
func (*Pair) kind() string       { return "pair" }
func (empty) kind() string       { return "empty list" }
func (unspecified) kind() string { return "unspecified" }
func (*Builtin) kind() string    { return "procedure" }
func (*Lambda) kind() string     { return "procedure" }

// Cons allocates a new pair.
func Cons(car, cdr Value) *Pair {
	return &Pair{Car: car, Cdr: cdr}
}

// List builds a proper list from vals.
func List(vals ...Value) Value {
	out := Nil
	for i := len(vals) - 1; i >= 0; i-- {
		out = Cons(vals[i], out)
	}
	return out
}

// Truthy reports whether v counts as true: everything except #f.
func Truthy(v Value) bool {
	b, ok := v.(Bool)
	return !ok || bool(b)
}

// listToSlice flattens a proper list. ok is false for improper or circular-looking input.
func listToSlice(v Value) ([]Value, bool) {
	var out []Value
	for {
		switch p := v.(type) {
		case empty:
			return out, true
		case *Pair:
			out = append(out, p.Car)
			v = p.Cdr
		default:
			return out, false
		}
	}
}

func isProcedure(v Value) bool {
	switch v.(type) {
	case *Builtin, *Lambda:
		return true
	}
	return false
}
