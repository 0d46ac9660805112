package scheme

import (
	"fmt"
	"io"
	"math"
	"strings"
)

func builtins() []*Builtin {
	var out []*Builtin
	out = append(out, numericBuiltins()...)
	out = append(out, predicateBuiltins()...)
	out = append(out, listBuiltins()...)
	out = append(out, stringBuiltins()...)
	out = append(out, outputBuiltins()...)
	return out
}

func number(name string, v Value) (Value, error) {
	switch v.(type) {
	case Int, Real:
		return v, nil
	}
	return nil, errorf("%s: expected number, got %s", name, Write(v))
}

func toFloat(v Value) float64 {
	switch n := v.(type) {
	case Int:
		return float64(n)
	case Real:
		return float64(n)
	}
	return math.NaN()
}

func integer(name string, v Value) (int64, error) {
	switch n := v.(type) {
	case Int:
		return int64(n), nil
	case Real:
		if f := float64(n); f == math.Trunc(f) {
			return int64(f), nil
		}
	}
	return 0, errorf("%s: expected integer, got %s", name, Write(v))
}

// arith folds args with an exact op when every operand is Int.
func arith(name string, args []Value, unit Value, iop func(a, b int64) int64, fop func(a, b float64) float64) (Value, error) {
	acc := unit
	for _, a := range args {
		n, err := number(name, a)
		if err != nil {
			return nil, err
		}
		ai, aok := acc.(Int)
		ni, nok := n.(Int)
		if aok && nok {
			acc = Int(iop(int64(ai), int64(ni)))
		} else {
			acc = Real(fop(toFloat(acc), toFloat(n)))
		}
	}
	return acc, nil
}

func numericBuiltins() []*Builtin {
	add := func(a, b int64) int64 { return a + b }
	mul := func(a, b int64) int64 { return a * b }
	return []*Builtin{
		{Name: "+", MaxArgs: -1, Fn: func(_ *Interp, args []Value) (Value, error) {
			return arith("+", args, Int(0), add, func(a, b float64) float64 { return a + b })
		}},
		{Name: "*", MaxArgs: -1, Fn: func(_ *Interp, args []Value) (Value, error) {
			return arith("*", args, Int(1), mul, func(a, b float64) float64 { return a * b })
		}},
		{Name: "-", MinArgs: 1, MaxArgs: -1, Fn: func(_ *Interp, args []Value) (Value, error) {
			first, err := number("-", args[0])
			if err != nil {
				return nil, err
			}
			if len(args) == 1 {
				return arith("-", args, Int(0), func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
			}
			return arith("-", args[1:], first, func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
		}},
		{Name: "/", MinArgs: 1, MaxArgs: -1, Fn: divide},
		{Name: "quotient", MinArgs: 2, MaxArgs: 2, Fn: intDivision("quotient", func(a, b int64) int64 { return a / b })},
		{Name: "remainder", MinArgs: 2, MaxArgs: 2, Fn: intDivision("remainder", func(a, b int64) int64 { return a % b })},
		{Name: "modulo", MinArgs: 2, MaxArgs: 2, Fn: intDivision("modulo", func(a, b int64) int64 {
			m := a % b
			if m != 0 && (m < 0) != (b < 0) {
				m += b
			}
			return m
		})},
		{Name: "abs", MinArgs: 1, MaxArgs: 1, Fn: func(_ *Interp, args []Value) (Value, error) {
			n, err := number("abs", args[0])
			if err != nil {
				return nil, err
			}
			if i, ok := n.(Int); ok {
				if i < 0 {
					return -i, nil
				}
				return i, nil
			}
			return Real(math.Abs(toFloat(n))), nil
		}},
		{Name: "min", MinArgs: 1, MaxArgs: -1, Fn: extremum("min", func(a, b float64) bool { return a < b })},
		{Name: "max", MinArgs: 1, MaxArgs: -1, Fn: extremum("max", func(a, b float64) bool { return a > b })},
		{Name: "=", MinArgs: 1, MaxArgs: -1, Fn: compare("=", func(a, b float64) bool { return a == b })},
		{Name: "<", MinArgs: 1, MaxArgs: -1, Fn: compare("<", func(a, b float64) bool { return a < b })},
		{Name: ">", MinArgs: 1, MaxArgs: -1, Fn: compare(">", func(a, b float64) bool { return a > b })},
		{Name: "<=", MinArgs: 1, MaxArgs: -1, Fn: compare("<=", func(a, b float64) bool { return a <= b })},
		{Name: ">=", MinArgs: 1, MaxArgs: -1, Fn: compare(">=", func(a, b float64) bool { return a >= b })},
	}
}

func divide(_ *Interp, args []Value) (Value, error) {
	acc, err := number("/", args[0])
	if err != nil {
		return nil, err
	}
	rest := args[1:]
	if len(args) == 1 {
		acc, rest = Int(1), args
	}
	for _, a := range rest {
		n, err := number("/", a)
		if err != nil {
			return nil, err
		}
		if toFloat(n) == 0 {
			return nil, errorf("/: division by zero")
		}
		ai, aok := acc.(Int)
		ni, nok := n.(Int)
		if aok && nok && ai%ni == 0 {
			acc = ai / ni
			continue
		}
		acc = Real(toFloat(acc) / toFloat(n))
	}
	return acc, nil
}

func intDivision(name string, op func(a, b int64) int64) func(*Interp, []Value) (Value, error) {
	return func(_ *Interp, args []Value) (Value, error) {
		a, err := integer(name, args[0])
		if err != nil {
			return nil, err
		}
		b, err := integer(name, args[1])
		if err != nil {
			return nil, err
		}
		if b == 0 {
			return nil, errorf("%s: division by zero", name)
		}
		return Int(op(a, b)), nil
	}
}

func extremum(name string, better func(a, b float64) bool) func(*Interp, []Value) (Value, error) {
	return func(_ *Interp, args []Value) (Value, error) {
		best, err := number(name, args[0])
		if err != nil {
			return nil, err
		}
		inexact := false
		for _, a := range args {
			n, err := number(name, a)
			if err != nil {
				return nil, err
			}
			if _, isReal := n.(Real); isReal {
				inexact = true
			}
			if better(toFloat(n), toFloat(best)) {
				best = n
			}
		}
		if inexact {
			return Real(toFloat(best)), nil
		}
		return best, nil
	}
}

func compare(name string, ok func(a, b float64) bool) func(*Interp, []Value) (Value, error) {
	return func(_ *Interp, args []Value) (Value, error) {
		for _, a := range args {
			if _, err := number(name, a); err != nil {
				return nil, err
			}
		}
		for i := 1; i < len(args); i++ {
			if ai, isInt := args[i-1].(Int); isInt {
				if bi, isInt := args[i].(Int); isInt {
					if !ok(float64(ai), float64(bi)) {
						return False, nil
					}
					continue
				}
			}
			if !ok(toFloat(args[i-1]), toFloat(args[i])) {
				return False, nil
			}
		}
		return True, nil
	}
}

func predicate(name string, test func(Value) bool) *Builtin {
	return &Builtin{Name: name, MinArgs: 1, MaxArgs: 1, Fn: func(_ *Interp, args []Value) (Value, error) {
		return Bool(test(args[0])), nil
	}}
}

func predicateBuiltins() []*Builtin {
	return []*Builtin{
		predicate("number?", isNumber),
		predicate("integer?", isInteger),
		predicate("string?", func(v Value) bool { _, ok := v.(Str); return ok }),
		predicate("symbol?", func(v Value) bool { _, ok := v.(Symbol); return ok }),
		predicate("boolean?", func(v Value) bool { _, ok := v.(Bool); return ok }),
		predicate("pair?", func(v Value) bool { _, ok := v.(*Pair); return ok }),
		predicate("null?", func(v Value) bool { return v == Nil }),
		predicate("list?", func(v Value) bool { _, ok := listToSlice(v); return ok }),
		predicate("procedure?", isProcedure),
		predicate("not", func(v Value) bool { return !Truthy(v) }),
		{Name: "zero?", MinArgs: 1, MaxArgs: 1, Fn: func(_ *Interp, args []Value) (Value, error) {
			n, err := number("zero?", args[0])
			if err != nil {
				return nil, err
			}
			return Bool(toFloat(n) == 0), nil
		}},
		{Name: "eq?", MinArgs: 2, MaxArgs: 2, Fn: func(_ *Interp, args []Value) (Value, error) {
			return Bool(eqv(args[0], args[1])), nil
		}},
		{Name: "eqv?", MinArgs: 2, MaxArgs: 2, Fn: func(_ *Interp, args []Value) (Value, error) {
			return Bool(eqv(args[0], args[1])), nil
		}},
		{Name: "equal?", MinArgs: 2, MaxArgs: 2, Fn: func(_ *Interp, args []Value) (Value, error) {
			return Bool(equal(args[0], args[1])), nil
		}},
	}
}

func isNumber(v Value) bool {
	_, err := number("number?", v)
	return err == nil
}

func isInteger(v Value) bool {
	_, err := integer("integer?", v)
	return err == nil
}

func eqv(a, b Value) bool {
	switch a.(type) {
	case *Pair, *Builtin, *Lambda:
		return a == b
	case Int, Real, Bool, Str, Symbol, empty, unspecified:
		return a == b
	}
	return false
}

func equal(a, b Value) bool {
	pa, aok := a.(*Pair)
	pb, bok := b.(*Pair)
	if aok && bok {
		return equal(pa.Car, pb.Car) && equal(pa.Cdr, pb.Cdr)
	}
	if aok != bok {
		return false
	}
	return eqv(a, b)
}

func outputBuiltins() []*Builtin {
	return []*Builtin{
		{Name: "display", MinArgs: 1, MaxArgs: 1, Fn: func(in *Interp, args []Value) (Value, error) {
			return Unspecified, in.emit("display", Display(args[0]))
		}},
		{Name: "write", MinArgs: 1, MaxArgs: 1, Fn: func(in *Interp, args []Value) (Value, error) {
			return Unspecified, in.emit("write", Write(args[0]))
		}},
		{Name: "newline", MaxArgs: 0, Fn: func(in *Interp, _ []Value) (Value, error) {
			return Unspecified, in.emit("newline", "\n")
		}},
		{Name: "format", MinArgs: 1, MaxArgs: -1, Fn: builtinFormat},
		{Name: "error", MinArgs: 1, MaxArgs: -1, Fn: builtinError},
	}
}

func (in *Interp) emit(name, s string) error {
	if _, err := io.WriteString(in.out, s); err != nil {
		return errorf("%s: %v", name, err)
	}
	return nil
}

// builtinFormat supports (format #f fmt args...), (format #t fmt args...) and (format fmt args...).
func builtinFormat(in *Interp, args []Value) (Value, error) {
	dest := Value(False)
	if _, isStr := args[0].(Str); !isStr {
		dest, args = args[0], args[1:]
	}
	if len(args) == 0 {
		return nil, errorf("format: missing format string")
	}
	tmpl, ok := args[0].(Str)
	if !ok {
		return nil, errorf("format: expected format string, got %s", Write(args[0]))
	}
	s, err := formatDirectives(string(tmpl), args[1:])
	if err != nil {
		return nil, err
	}
	if Truthy(dest) {
		return Unspecified, in.emit("format", s)
	}
	return Str(s), nil
}

func formatDirectives(tmpl string, args []Value) (string, error) {
	var sb strings.Builder
	next := 0
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '~' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(tmpl) {
			return "", errorf("format: trailing '~' in %q", tmpl)
		}
		switch d := tmpl[i]; d {
		case 'a', 'A', 's', 'S':
			if next >= len(args) {
				return "", errorf("format: too few arguments for %q", tmpl)
			}
			if d == 'a' || d == 'A' {
				sb.WriteString(Display(args[next]))
			} else {
				sb.WriteString(Write(args[next]))
			}
			next++
		case '%':
			sb.WriteByte('\n')
		case '~':
			sb.WriteByte('~')
		default:
			return "", errorf("format: unknown directive '~%c'", d)
		}
	}
	return sb.String(), nil
}

// builtinError builds the message the error hook receives:
//
//	(error "bad value ~a" x)    ; format directives are applied
//	(error "bad value:" x y)    ; irritants are appended, written
//	(error 'my-error "msg" ...) ; a leading symbol tags the error
func builtinError(_ *Interp, args []Value) (Value, error) {
	if tag, isSym := args[0].(Symbol); isSym && len(args) > 1 {
		if _, isStr := args[1].(Str); isStr {
			msg, err := errorMessage(args[1:])
			if err != nil {
				return nil, err
			}
			return nil, &Error{Msg: fmt.Sprintf("%s: %s", tag, msg)}
		}
	}
	msg, err := errorMessage(args)
	if err != nil {
		return nil, err
	}
	return nil, &Error{Msg: msg}
}

func errorMessage(args []Value) (string, error) {
	head, isStr := args[0].(Str)
	if !isStr {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = Write(a)
		}
		return strings.Join(parts, " "), nil
	}
	if strings.ContainsRune(string(head), '~') {
		return formatDirectives(string(head), args[1:])
	}
	var sb strings.Builder
	sb.WriteString(string(head))
	for _, a := range args[1:] {
		sb.WriteByte(' ')
		sb.WriteString(Write(a))
	}
	return sb.String(), nil
}
