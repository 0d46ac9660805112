package scheme

func properList(name string, v Value) ([]Value, error) {
	items, ok := listToSlice(v)
	if !ok {
		return nil, errorf("%s: expected list, got %s", name, Write(v))
	}
	return items, nil
}

func pair(name string, v Value) (*Pair, error) {
	p, ok := v.(*Pair)
	if !ok {
		return nil, errorf("%s: expected pair, got %s", name, Write(v))
	}
	return p, nil
}

func listBuiltins() []*Builtin {
	return []*Builtin{
		{Name: "cons", MinArgs: 2, MaxArgs: 2, Fn: func(_ *Interp, args []Value) (Value, error) {
			return Cons(args[0], args[1]), nil
		}},
		{Name: "car", MinArgs: 1, MaxArgs: 1, Fn: func(_ *Interp, args []Value) (Value, error) {
			p, err := pair("car", args[0])
			if err != nil {
				return nil, err
			}
			return p.Car, nil
		}},
		{Name: "cdr", MinArgs: 1, MaxArgs: 1, Fn: func(_ *Interp, args []Value) (Value, error) {
			p, err := pair("cdr", args[0])
			if err != nil {
				return nil, err
			}
			return p.Cdr, nil
		}},
		{Name: "list", MaxArgs: -1, Fn: func(_ *Interp, args []Value) (Value, error) {
			return List(args...), nil
		}},
		{Name: "length", MinArgs: 1, MaxArgs: 1, Fn: func(_ *Interp, args []Value) (Value, error) {
			items, err := properList("length", args[0])
			if err != nil {
				return nil, err
			}
			return Int(len(items)), nil
		}},
		{Name: "append", MaxArgs: -1, Fn: builtinAppend},
		{Name: "reverse", MinArgs: 1, MaxArgs: 1, Fn: func(_ *Interp, args []Value) (Value, error) {
			items, err := properList("reverse", args[0])
			if err != nil {
				return nil, err
			}
			out := Nil
			for _, it := range items {
				out = Cons(it, out)
			}
			return out, nil
		}},
		{Name: "list-ref", MinArgs: 2, MaxArgs: 2, Fn: func(_ *Interp, args []Value) (Value, error) {
			items, err := properList("list-ref", args[0])
			if err != nil {
				return nil, err
			}
			k, err := integer("list-ref", args[1])
			if err != nil {
				return nil, err
			}
			if k < 0 || k >= int64(len(items)) {
				return nil, errorf("list-ref: index %d out of range", k)
			}
			return items[k], nil
		}},
		{Name: "map", MinArgs: 2, MaxArgs: -1, Fn: builtinMap},
		{Name: "for-each", MinArgs: 2, MaxArgs: -1, Fn: func(in *Interp, args []Value) (Value, error) {
			if _, err := builtinMap(in, args); err != nil {
				return nil, err
			}
			return Unspecified, nil
		}},
		{Name: "apply", MinArgs: 2, MaxArgs: -1, Fn: func(in *Interp, args []Value) (Value, error) {
			last, err := properList("apply", args[len(args)-1])
			if err != nil {
				return nil, err
			}
			call := append(append([]Value{}, args[1:len(args)-1]...), last...)
			return in.apply(args[0], call)
		}},
	}
}

func builtinAppend(_ *Interp, args []Value) (Value, error) {
	if len(args) == 0 {
		return Nil, nil
	}
	out := args[len(args)-1]
	for i := len(args) - 2; i >= 0; i-- {
		items, err := properList("append", args[i])
		if err != nil {
			return nil, err
		}
		for j := len(items) - 1; j >= 0; j-- {
			out = Cons(items[j], out)
		}
	}
	return out, nil
}

// builtinMap walks the lists in lockstep and stops at the shortest one.
func builtinMap(in *Interp, args []Value) (Value, error) {
	fn := args[0]
	if !isProcedure(fn) {
		return nil, errorf("map: expected procedure, got %s", Write(fn))
	}
	lists := make([][]Value, len(args)-1)
	n := -1
	for i, a := range args[1:] {
		items, err := properList("map", a)
		if err != nil {
			return nil, err
		}
		lists[i] = items
		if n < 0 || len(items) < n {
			n = len(items)
		}
	}
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		call := make([]Value, len(lists))
		for j := range lists {
			call[j] = lists[j][i]
		}
		v, err := in.apply(fn, call)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return List(out...), nil
}
