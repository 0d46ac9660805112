package scheme

import (
	"testing"
)

func TestReaderData(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"42", "42"},
		{"-7", "-7"},
		{"2.50", "2.5"},
		{"1e3", "1000.0"},
		{"foo", "foo"},
		{"-", "-"},
		{"...", "..."},
		{"#t", "#t"},
		{"#false", "#f"},
		{`"a\"b\nc"`, `"a\"b\nc"`},
		{"(1 2 3)", "(1 2 3)"},
		{"[a b]", "(a b)"},
		{"(1 . 2)", "(1 . 2)"},
		{"(1 2 . 3)", "(1 2 . 3)"},
		{"'x", "'x"},
		{"`(a ,b ,@c)", "`(a ,b ,@c)"},
		{"( ; comment\n 1 )", "(1)"},
		{"()", "()"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v, err := NewReader(tt.src).Read()
			if err != nil {
				t.Fatalf("Read(%q) error: %v", tt.src, err)
			}
			if got := Write(v); got != tt.want {
				t.Errorf("Read(%q) = %s, want %s", tt.src, got, tt.want)
			}
		})
	}
}

func TestReaderReadAll(t *testing.T) {
	forms, err := NewReader("1 (a) \"s\" ; trailing\n").ReadAll()
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if len(forms) != 3 {
		t.Fatalf("expected 3 forms, got %d", len(forms))
	}
}

func TestReaderErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"(1 2", "unexpected end of input in list"},
		{")", "unexpected ')'"},
		{"(1 ]", "mismatched ']'"},
		{`"abc`, "unterminated string"},
		{`"\q"`, `unknown escape '\q' in string`},
		{`#\a`, `unsupported syntax "#\\a"`},
		{"( . 1)", "'.' at start of list"},
		{"(1 . 2 3)", "expected ')' after dotted tail"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := NewReader(tt.src).ReadAll()
			if err == nil {
				t.Fatalf("expected error for %q", tt.src)
			}
			if err.Error() != tt.want {
				t.Errorf("error = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestParseNumberRejectsSymbols(t *testing.T) {
	for _, tok := range []string{"+", "-", "abc", "1+", "inf", "nan", "-x"} {
		if _, ok := parseNumber(tok); ok {
			t.Errorf("parseNumber(%q) should fail", tok)
		}
	}
}
