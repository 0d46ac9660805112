package scheme

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

func str(name string, v Value) (string, error) {
	s, ok := v.(Str)
	if !ok {
		return "", errorf("%s: expected string, got %s", name, Write(v))
	}
	return string(s), nil
}

// stringMapper wraps a whole-string transform as a one-argument builtin.
func stringMapper(name string, fn func(string) string) *Builtin {
	return &Builtin{Name: name, MinArgs: 1, MaxArgs: 1, Fn: func(_ *Interp, args []Value) (Value, error) {
		s, err := str(name, args[0])
		if err != nil {
			return nil, err
		}
		return Str(fn(s)), nil
	}}
}

func stringBuiltins() []*Builtin {
	// caser не потокобезопасен, но Interp и так однопоточный
	upper := cases.Upper(language.Und)
	lower := cases.Lower(language.Und)
	fold := cases.Fold()
	return []*Builtin{
		{Name: "string-append", MaxArgs: -1, Fn: func(_ *Interp, args []Value) (Value, error) {
			var out []byte
			for _, a := range args {
				s, err := str("string-append", a)
				if err != nil {
					return nil, err
				}
				out = append(out, s...)
			}
			return Str(out), nil
		}},
		{Name: "string-length", MinArgs: 1, MaxArgs: 1, Fn: func(_ *Interp, args []Value) (Value, error) {
			s, err := str("string-length", args[0])
			if err != nil {
				return nil, err
			}
			return Int(utf8.RuneCountInString(s)), nil
		}},
		{Name: "substring", MinArgs: 2, MaxArgs: 3, Fn: builtinSubstring},
		{Name: "string->number", MinArgs: 1, MaxArgs: 1, Fn: func(_ *Interp, args []Value) (Value, error) {
			s, err := str("string->number", args[0])
			if err != nil {
				return nil, err
			}
			if n, ok := parseNumber(s); ok {
				return n, nil
			}
			return False, nil
		}},
		{Name: "number->string", MinArgs: 1, MaxArgs: 1, Fn: func(_ *Interp, args []Value) (Value, error) {
			n, err := number("number->string", args[0])
			if err != nil {
				return nil, err
			}
			return Str(Display(n)), nil
		}},
		{Name: "symbol->string", MinArgs: 1, MaxArgs: 1, Fn: func(_ *Interp, args []Value) (Value, error) {
			sym, ok := args[0].(Symbol)
			if !ok {
				return nil, errorf("symbol->string: expected symbol, got %s", Write(args[0]))
			}
			return Str(sym), nil
		}},
		{Name: "string->symbol", MinArgs: 1, MaxArgs: 1, Fn: func(_ *Interp, args []Value) (Value, error) {
			s, err := str("string->symbol", args[0])
			if err != nil {
				return nil, err
			}
			return Symbol(s), nil
		}},
		{Name: "string=?", MinArgs: 1, MaxArgs: -1, Fn: func(_ *Interp, args []Value) (Value, error) {
			first, err := str("string=?", args[0])
			if err != nil {
				return nil, err
			}
			for _, a := range args[1:] {
				s, err := str("string=?", a)
				if err != nil {
					return nil, err
				}
				if s != first {
					return False, nil
				}
			}
			return True, nil
		}},
		stringMapper("string-upcase", upper.String),
		stringMapper("string-downcase", lower.String),
		stringMapper("string-foldcase", fold.String),
		stringMapper("string-normalize", norm.NFC.String),
	}
}

// builtinSubstring indexes by runes, not bytes.
func builtinSubstring(_ *Interp, args []Value) (Value, error) {
	s, err := str("substring", args[0])
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	start, err := integer("substring", args[1])
	if err != nil {
		return nil, err
	}
	end := int64(len(runes))
	if len(args) == 3 {
		if end, err = integer("substring", args[2]); err != nil {
			return nil, err
		}
	}
	if start < 0 || end > int64(len(runes)) || start > end {
		return nil, errorf("substring: indices %d..%d out of range for length %d", start, end, len(runes))
	}
	return Str(string(runes[start:end])), nil
}
