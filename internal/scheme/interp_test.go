package scheme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalDisplay(t *testing.T, in *Interp, src string) string {
	t.Helper()
	v, err := in.Eval(src)
	require.NoError(t, err, "eval %q", src)
	return in.Display(v)
}

func TestEvalArithmetic(t *testing.T) {
	in := New()
	tests := []struct {
		src  string
		want string
	}{
		{"(+ 1 2)", "3"},
		{"(+ 1 (* 2 3))", "7"},
		{"(- 10)", "-10"},
		{"(- 10 3 2)", "5"},
		{"(/ 6 3)", "2"},
		{"(/ 7 2)", "3.5"},
		{"(+ 1 2.5)", "3.5"},
		{"(* 2.0 3)", "6.0"},
		{"(quotient 7 2)", "3"},
		{"(remainder -7 2)", "-1"},
		{"(modulo -7 2)", "1"},
		{"(abs -4)", "4"},
		{"(min 3 1 2)", "1"},
		{"(max 3 1.0 2)", "3.0"},
		{"(< 1 2 3)", "#t"},
		{"(< 1 3 2)", "#f"},
		{"(= 2 2.0)", "#t"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, evalDisplay(t, in, tt.src))
		})
	}
}

func TestEvalSpecialForms(t *testing.T) {
	in := New()
	tests := []struct {
		src  string
		want string
	}{
		{"(if #f 1 2)", "2"},
		{"(if 0 'yes 'no)", "yes"},
		{"(define x 5)", "5"},
		{"x", "5"},
		{"(set! x 6) x", "6"},
		{"(define (sq n) (* n n)) (sq 9)", "81"},
		{"((lambda (a . rest) rest) 1 2 3)", "(2 3)"},
		{"(let ((a 1) (b 2)) (+ a b))", "3"},
		{"(let* ((a 1) (b (+ a 1))) b)", "2"},
		{"(let loop ((i 0) (acc '())) (if (= i 3) (reverse acc) (loop (+ i 1) (cons i acc))))", "(0 1 2)"},
		{"(cond ((= 1 2) 'a) ((= 1 1) 'b) (else 'c))", "b"},
		{"(cond (#f 1) (else 'fallback))", "fallback"},
		{"(and 1 2 3)", "3"},
		{"(and 1 #f 3)", "#f"},
		{"(or #f 7)", "7"},
		{"(when #t 'ran)", "ran"},
		{"(unless #t 'ran)", ""},
		{"(begin 1 2 3)", "3"},
		{"`(1 ,(+ 1 1) ,@(list 3 4))", "(1 2 3 4)"},
		{"'(a . b)", "(a . b)"},
		{"''x", "'x"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, evalDisplay(t, in, tt.src))
		})
	}
}

func TestEvalBuiltins(t *testing.T) {
	in := New()
	tests := []struct {
		src  string
		want string
	}{
		{`(string-append "foo" "bar")`, "foobar"},
		{`(string-length "привет")`, "6"},
		{`(substring "привет" 1 3)`, "ри"},
		{`(string->number "42")`, "42"},
		{`(string->number "nope")`, "#f"},
		{`(number->string 3.5)`, "3.5"},
		{`(symbol->string 'abc)`, "abc"},
		{`(string->symbol "abc")`, "abc"},
		{`(string-upcase "straße")`, "STRASSE"},
		{`(string-downcase "ÀB")`, "àb"},
		{`(length '(1 2 3))`, "3"},
		{`(append '(1) '(2 3) '(4))`, "(1 2 3 4)"},
		{`(list-ref '(a b c) 1)`, "b"},
		{`(map + '(1 2) '(10 20 30))`, "(11 22)"},
		{`(apply + 1 '(2 3))`, "6"},
		{`(equal? '(1 (2)) '(1 (2)))`, "#t"},
		{`(eq? 'a 'a)`, "#t"},
		{`(null? '())`, "#t"},
		{`(list? '(1 . 2))`, "#f"},
		{`(procedure? car)`, "#t"},
		{`(format #f "~a=~s~%" 'x "y")`, "x=\"y\"\n"},
		{`car`, "#<procedure car>"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, evalDisplay(t, in, tt.src))
		})
	}
}

func TestStringNormalizeComposes(t *testing.T) {
	in := New()
	v, err := in.Eval("(string-normalize \"e\u0301\")")
	require.NoError(t, err)
	assert.Equal(t, Str("\u00e9"), v)
}

func TestOutputBuiltinsWriteToOutput(t *testing.T) {
	var sb strings.Builder
	in := New(WithOutput(&sb))
	v, err := in.Eval(`(display "hi") (newline) (write "q") (format #t "~a!" 1)`)
	require.NoError(t, err)
	assert.Equal(t, "hi\n\"q\"1!", sb.String())
	assert.Equal(t, "", in.Display(v), "unspecified displays as nothing")
}

func TestEvalErrors(t *testing.T) {
	in := New()
	tests := []struct {
		src  string
		want string
	}{
		{"undefined-name", "undefined-name: unbound variable"},
		{"(1 2)", "attempt to apply non-procedure 1"},
		{"(car '())", "car: expected pair, got ()"},
		{"(/ 1 0)", "/: division by zero"},
		{"(cons 1)", "cons: expected 2 arguments, got 1"},
		{`(error "boom:" 1 "two")`, `boom: 1 "two"`},
		{`(error 'parse "bad ~a" 7)`, "parse: bad 7"},
		{"(+ 1", "unexpected end of input in list"},
		{"(+ 1 \"a\")", `+: expected number, got "a"`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := in.Eval(tt.src)
			require.Error(t, err)
			var serr *Error
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.want, serr.Msg)
		})
	}
}

func TestErrorHookRecovers(t *testing.T) {
	in := New()
	var got []string
	in.SetErrorHook(func(msg string) Value {
		got = append(got, msg)
		return Unspecified
	})

	v, err := in.Eval("(car 5)")
	require.NoError(t, err)
	assert.Equal(t, Unspecified, v)
	assert.Equal(t, []string{"car: expected pair, got 5"}, got)
}

func TestErrorHookDeclines(t *testing.T) {
	in := New()
	calls := 0
	in.SetErrorHook(func(string) Value {
		calls++
		return nil
	})

	_, err := in.Eval("nope")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestEvalStopsAtFirstFailingForm(t *testing.T) {
	var sb strings.Builder
	in := New(WithOutput(&sb))
	_, err := in.Eval(`(display "a") (car 1) (display "b")`)
	require.Error(t, err)
	assert.Equal(t, "a", sb.String())
}

func TestGlobalStatePersistsAcrossEvals(t *testing.T) {
	in := New()
	_, err := in.Eval("(define counter 0) (define (bump) (set! counter (+ counter 1)) counter)")
	require.NoError(t, err)
	_, err = in.Eval("(bump)")
	require.NoError(t, err)
	assert.Equal(t, "2", evalDisplay(t, in, "(bump)"))
}

func TestTailCallsDoNotGrowDepth(t *testing.T) {
	in := New(WithMaxDepth(100))
	src := "(define (count n) (if (= n 0) 'done (count (- n 1)))) (count 100000)"
	assert.Equal(t, "done", evalDisplay(t, in, src))
}

func TestDepthLimit(t *testing.T) {
	in := New(WithMaxDepth(50))
	_, err := in.Eval("(define (deep n) (if (= n 0) 0 (+ 1 (deep (- n 1))))) (deep 1000)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum recursion depth exceeded")
}
