package scheme

import (
	"fmt"
)

// Error is a Scheme-level failure. Msg is the text handed to the error hook.
type Error struct {
	Msg string
}

func (e *Error) Error() string {
	return e.Msg
}

func errorf(format string, args ...any) error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

var specialForms map[Symbol]func(in *Interp, args []Value, env *Env) (Value, *Env, error)

func init() {
	// tail-позиции: форма возвращает (выражение, окружение, nil), цикл eval продолжает с ним
	specialForms = map[Symbol]func(*Interp, []Value, *Env) (Value, *Env, error){
		"quote":      formQuote,
		"quasiquote": formQuasiquote,
		"if":         formIf,
		"define":     formDefine,
		"set!":       formSet,
		"lambda":     formLambda,
		"begin":      formBegin,
		"let":        formLet,
		"let*":       formLetStar,
		"cond":       formCond,
		"and":        formAnd,
		"or":         formOr,
		"when":       formWhen,
		"unless":     formUnless,
	}
}

// done wraps an already computed value so the eval loop returns it as is.
type done struct{ v Value }

func (done) kind() string { return "internal" }

func (in *Interp) eval(x Value, env *Env) (Value, error) {
	in.depth++
	defer func() { in.depth-- }()
	if in.maxDepth > 0 && in.depth > in.maxDepth {
		return nil, errorf("maximum recursion depth exceeded")
	}

	for {
		switch v := x.(type) {
		case done:
			return v.v, nil
		case Symbol:
			val, ok := env.Lookup(v)
			if !ok {
				return nil, errorf("%s: unbound variable", v)
			}
			return val, nil
		case *Pair:
			args, ok := listToSlice(v.Cdr)
			if !ok {
				return nil, errorf("improper list in call: %s", Write(v))
			}
			if head, isSym := v.Car.(Symbol); isSym {
				if form, special := specialForms[head]; special {
					next, nextEnv, err := form(in, args, env)
					if err != nil {
						return nil, err
					}
					x, env = next, nextEnv
					continue
				}
			}

			fn, err := in.eval(v.Car, env)
			if err != nil {
				return nil, err
			}
			vals := make([]Value, len(args))
			for i, a := range args {
				if vals[i], err = in.eval(a, env); err != nil {
					return nil, err
				}
			}
			if lam, isLambda := fn.(*Lambda); isLambda {
				frame, err := bindParams(lam, vals)
				if err != nil {
					return nil, err
				}
				body, bodyEnv, err := in.evalBody(lam.Body, frame)
				if err != nil {
					return nil, err
				}
				x, env = body, bodyEnv
				continue
			}
			return in.apply(fn, vals)
		case empty:
			return nil, errorf("missing procedure expression: ()")
		default:
			// числа, строки, булевы значения вычисляются сами в себя
			return x, nil
		}
	}
}

// apply calls fn with already evaluated arguments.
func (in *Interp) apply(fn Value, args []Value) (Value, error) {
	switch f := fn.(type) {
	case *Builtin:
		if len(args) < f.MinArgs || (f.MaxArgs >= 0 && len(args) > f.MaxArgs) {
			return nil, arityError(f.Name, f.MinArgs, f.MaxArgs, len(args))
		}
		return f.Fn(in, args)
	case *Lambda:
		frame, err := bindParams(f, args)
		if err != nil {
			return nil, err
		}
		body, bodyEnv, err := in.evalBody(f.Body, frame)
		if err != nil {
			return nil, err
		}
		return in.eval(body, bodyEnv)
	}
	return nil, errorf("attempt to apply non-procedure %s", Write(fn))
}

func arityError(name string, lo, hi, got int) error {
	switch {
	case hi == lo:
		return errorf("%s: expected %d argument%s, got %d", name, lo, plural(lo), got)
	case hi < 0:
		return errorf("%s: expected at least %d argument%s, got %d", name, lo, plural(lo), got)
	}
	return errorf("%s: expected %d to %d arguments, got %d", name, lo, hi, got)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func bindParams(lam *Lambda, args []Value) (*Env, error) {
	name := lam.Name
	if name == "" {
		name = "lambda"
	}
	if lam.Rest == "" && len(args) != len(lam.Params) {
		return nil, arityError(name, len(lam.Params), len(lam.Params), len(args))
	}
	if lam.Rest != "" && len(args) < len(lam.Params) {
		return nil, arityError(name, len(lam.Params), -1, len(args))
	}
	frame := NewEnv(lam.Env)
	for i, p := range lam.Params {
		frame.Define(p, args[i])
	}
	if lam.Rest != "" {
		frame.Define(lam.Rest, List(args[len(lam.Params):]...))
	}
	return frame, nil
}

// evalBody evaluates all but the last form and returns the last one for the
// caller's loop.
func (in *Interp) evalBody(body []Value, env *Env) (Value, *Env, error) {
	if len(body) == 0 {
		return done{Unspecified}, env, nil
	}
	for _, form := range body[:len(body)-1] {
		if _, err := in.eval(form, env); err != nil {
			return nil, nil, err
		}
	}
	return body[len(body)-1], env, nil
}

func formQuote(_ *Interp, args []Value, env *Env) (Value, *Env, error) {
	if len(args) != 1 {
		return nil, nil, errorf("quote: expected 1 argument, got %d", len(args))
	}
	return done{args[0]}, env, nil
}

func formIf(in *Interp, args []Value, env *Env) (Value, *Env, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, nil, errorf("if: expected 2 or 3 arguments, got %d", len(args))
	}
	test, err := in.eval(args[0], env)
	if err != nil {
		return nil, nil, err
	}
	if Truthy(test) {
		return args[1], env, nil
	}
	if len(args) == 3 {
		return args[2], env, nil
	}
	return done{Unspecified}, env, nil
}

func formDefine(in *Interp, args []Value, env *Env) (Value, *Env, error) {
	if len(args) == 0 {
		return nil, nil, errorf("define: missing name")
	}
	switch target := args[0].(type) {
	case Symbol:
		if len(args) > 2 {
			return nil, nil, errorf("define: too many forms for %s", target)
		}
		var val Value = Unspecified
		if len(args) == 2 {
			v, err := in.eval(args[1], env)
			if err != nil {
				return nil, nil, err
			}
			if lam, ok := v.(*Lambda); ok && lam.Name == "" {
				lam.Name = string(target)
			}
			val = v
		}
		env.Define(target, val)
		return done{val}, env, nil
	case *Pair:
		name, ok := target.Car.(Symbol)
		if !ok {
			return nil, nil, errorf("define: procedure name must be a symbol, got %s", Write(target.Car))
		}
		lam, err := makeLambda(string(name), target.Cdr, args[1:], env)
		if err != nil {
			return nil, nil, err
		}
		env.Define(name, lam)
		return done{lam}, env, nil
	}
	return nil, nil, errorf("define: cannot define %s", Write(args[0]))
}

func formSet(in *Interp, args []Value, env *Env) (Value, *Env, error) {
	if len(args) != 2 {
		return nil, nil, errorf("set!: expected 2 arguments, got %d", len(args))
	}
	name, ok := args[0].(Symbol)
	if !ok {
		return nil, nil, errorf("set!: can't set %s", Write(args[0]))
	}
	val, err := in.eval(args[1], env)
	if err != nil {
		return nil, nil, err
	}
	if !env.Set(name, val) {
		return nil, nil, errorf("set!: %s: unbound variable", name)
	}
	return done{val}, env, nil
}

func formLambda(_ *Interp, args []Value, env *Env) (Value, *Env, error) {
	if len(args) == 0 {
		return nil, nil, errorf("lambda: missing parameter list")
	}
	lam, err := makeLambda("", args[0], args[1:], env)
	if err != nil {
		return nil, nil, err
	}
	return done{lam}, env, nil
}

func makeLambda(name string, params Value, body []Value, env *Env) (*Lambda, error) {
	lam := &Lambda{Name: name, Body: body, Env: env}
	for {
		switch p := params.(type) {
		case empty:
			return lam, nil
		case Symbol:
			lam.Rest = p
			return lam, nil
		case *Pair:
			sym, ok := p.Car.(Symbol)
			if !ok {
				return nil, errorf("lambda: parameter must be a symbol, got %s", Write(p.Car))
			}
			lam.Params = append(lam.Params, sym)
			params = p.Cdr
		default:
			return nil, errorf("lambda: bad parameter list %s", Write(params))
		}
	}
}

func formBegin(in *Interp, args []Value, env *Env) (Value, *Env, error) {
	return in.evalBody(args, env)
}

func parseBindings(form string, v Value) ([]Symbol, []Value, error) {
	bindings, ok := listToSlice(v)
	if !ok {
		return nil, nil, errorf("%s: bad binding list %s", form, Write(v))
	}
	names := make([]Symbol, 0, len(bindings))
	exprs := make([]Value, 0, len(bindings))
	for _, b := range bindings {
		parts, ok := listToSlice(b)
		if !ok || len(parts) == 0 || len(parts) > 2 {
			return nil, nil, errorf("%s: bad binding %s", form, Write(b))
		}
		name, ok := parts[0].(Symbol)
		if !ok {
			return nil, nil, errorf("%s: binding name must be a symbol, got %s", form, Write(parts[0]))
		}
		names = append(names, name)
		if len(parts) == 2 {
			exprs = append(exprs, parts[1])
		} else {
			exprs = append(exprs, done{Unspecified})
		}
	}
	return names, exprs, nil
}

func formLet(in *Interp, args []Value, env *Env) (Value, *Env, error) {
	if len(args) == 0 {
		return nil, nil, errorf("let: missing bindings")
	}
	// именованный let: (let loop ((i 0)) ...)
	if loopName, named := args[0].(Symbol); named {
		if len(args) < 2 {
			return nil, nil, errorf("let: missing bindings for %s", loopName)
		}
		names, exprs, err := parseBindings("let", args[1])
		if err != nil {
			return nil, nil, err
		}
		vals, err := in.evalAll(exprs, env)
		if err != nil {
			return nil, nil, err
		}
		loopEnv := NewEnv(env)
		lam := &Lambda{Name: string(loopName), Params: names, Body: args[2:], Env: loopEnv}
		loopEnv.Define(loopName, lam)
		frame, err := bindParams(lam, vals)
		if err != nil {
			return nil, nil, err
		}
		return in.evalBody(lam.Body, frame)
	}
	names, exprs, err := parseBindings("let", args[0])
	if err != nil {
		return nil, nil, err
	}
	vals, err := in.evalAll(exprs, env)
	if err != nil {
		return nil, nil, err
	}
	frame := NewEnv(env)
	for i, n := range names {
		frame.Define(n, vals[i])
	}
	return in.evalBody(args[1:], frame)
}

func formLetStar(in *Interp, args []Value, env *Env) (Value, *Env, error) {
	if len(args) == 0 {
		return nil, nil, errorf("let*: missing bindings")
	}
	names, exprs, err := parseBindings("let*", args[0])
	if err != nil {
		return nil, nil, err
	}
	frame := env
	for i, n := range names {
		v, err := in.eval(exprs[i], frame)
		if err != nil {
			return nil, nil, err
		}
		frame = NewEnv(frame)
		frame.Define(n, v)
	}
	return in.evalBody(args[1:], NewEnv(frame))
}

func formCond(in *Interp, args []Value, env *Env) (Value, *Env, error) {
	for _, clause := range args {
		parts, ok := listToSlice(clause)
		if !ok || len(parts) == 0 {
			return nil, nil, errorf("cond: bad clause %s", Write(clause))
		}
		if sym, isSym := parts[0].(Symbol); isSym && sym == "else" {
			return in.evalBody(parts[1:], env)
		}
		test, err := in.eval(parts[0], env)
		if err != nil {
			return nil, nil, err
		}
		if !Truthy(test) {
			continue
		}
		if len(parts) == 1 {
			return done{test}, env, nil
		}
		return in.evalBody(parts[1:], env)
	}
	return done{Unspecified}, env, nil
}

func formAnd(in *Interp, args []Value, env *Env) (Value, *Env, error) {
	if len(args) == 0 {
		return done{True}, env, nil
	}
	for _, a := range args[:len(args)-1] {
		v, err := in.eval(a, env)
		if err != nil {
			return nil, nil, err
		}
		if !Truthy(v) {
			return done{v}, env, nil
		}
	}
	return args[len(args)-1], env, nil
}

func formOr(in *Interp, args []Value, env *Env) (Value, *Env, error) {
	if len(args) == 0 {
		return done{False}, env, nil
	}
	for _, a := range args[:len(args)-1] {
		v, err := in.eval(a, env)
		if err != nil {
			return nil, nil, err
		}
		if Truthy(v) {
			return done{v}, env, nil
		}
	}
	return args[len(args)-1], env, nil
}

func formWhen(in *Interp, args []Value, env *Env) (Value, *Env, error) {
	return conditionalBody(in, "when", true, args, env)
}

func formUnless(in *Interp, args []Value, env *Env) (Value, *Env, error) {
	return conditionalBody(in, "unless", false, args, env)
}

func conditionalBody(in *Interp, form string, want bool, args []Value, env *Env) (Value, *Env, error) {
	if len(args) == 0 {
		return nil, nil, errorf("%s: missing test", form)
	}
	test, err := in.eval(args[0], env)
	if err != nil {
		return nil, nil, err
	}
	if Truthy(test) != want {
		return done{Unspecified}, env, nil
	}
	return in.evalBody(args[1:], env)
}

func formQuasiquote(in *Interp, args []Value, env *Env) (Value, *Env, error) {
	if len(args) != 1 {
		return nil, nil, errorf("quasiquote: expected 1 argument, got %d", len(args))
	}
	v, err := in.quasi(args[0], env)
	if err != nil {
		return nil, nil, err
	}
	return done{v}, env, nil
}

func (in *Interp) quasi(x Value, env *Env) (Value, error) {
	p, ok := x.(*Pair)
	if !ok {
		return x, nil
	}
	if head, isSym := p.Car.(Symbol); isSym && head == "unquote" {
		args, _ := listToSlice(p.Cdr)
		if len(args) != 1 {
			return nil, errorf("unquote: expected 1 argument, got %d", len(args))
		}
		return in.eval(args[0], env)
	}
	// (unquote-splicing e) внутри списка вклеивает элементы
	if inner, isPair := p.Car.(*Pair); isPair {
		if head, isSym := inner.Car.(Symbol); isSym && head == "unquote-splicing" {
			args, _ := listToSlice(inner.Cdr)
			if len(args) != 1 {
				return nil, errorf("unquote-splicing: expected 1 argument, got %d", len(args))
			}
			spliced, err := in.eval(args[0], env)
			if err != nil {
				return nil, err
			}
			items, ok := listToSlice(spliced)
			if !ok {
				return nil, errorf("unquote-splicing: not a list: %s", Write(spliced))
			}
			rest, err := in.quasi(p.Cdr, env)
			if err != nil {
				return nil, err
			}
			for i := len(items) - 1; i >= 0; i-- {
				rest = Cons(items[i], rest)
			}
			return rest, nil
		}
	}
	car, err := in.quasi(p.Car, env)
	if err != nil {
		return nil, err
	}
	cdr, err := in.quasi(p.Cdr, env)
	if err != nil {
		return nil, err
	}
	return Cons(car, cdr), nil
}

func (in *Interp) evalAll(exprs []Value, env *Env) ([]Value, error) {
	vals := make([]Value, len(exprs))
	for i, e := range exprs {
		v, err := in.eval(e, env)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
