package expand

import (
	"fmt"

	"schemepp/internal/diag"
	"schemepp/internal/source"
)

// Kind is the delimiter pair of a region.
type Kind uint8

const (
	// KindDisplay is `(`…`)`: the result is rendered into the output.
	KindDisplay Kind = iota + 1
	// KindSilent is `{`…`}`: the result is discarded.
	KindSilent
)

func (k Kind) String() string {
	switch k {
	case KindDisplay:
		return "display"
	case KindSilent:
		return "silent"
	default:
		return "unknown"
	}
}

// Open returns the opening delimiter byte.
func (k Kind) Open() byte {
	if k == KindSilent {
		return '{'
	}
	return '('
}

// Close returns the closing delimiter byte.
func (k Kind) Close() byte {
	if k == KindSilent {
		return '}'
	}
	return ')'
}

func kindOf(b byte) (Kind, bool) {
	switch b {
	case '(':
		return KindDisplay, true
	case '{':
		return KindSilent, true
	}
	return 0, false
}

// Region is one escape region found in a file.
type Region struct {
	Kind      Kind
	Span      source.Span // opening introducer .. byte after the closing introducer
	Inner     source.Span // strictly between the delimiters
	StartLine uint32
	EndLine   uint32
}

// InnerText returns the bytes between the delimiters.
func (r Region) InnerText(f *source.File) []byte {
	return f.Content[r.Inner.Start:r.Inner.End]
}

// SyntaxError is a malformed region. It stops the expansion of the file.
type SyntaxError struct {
	Code diag.Code
	Msg  string
	Span source.Span
	Line uint32
}

func (e *SyntaxError) Error() string {
	return e.Msg
}

// Diagnostic converts the error for reporting under path.
func (e *SyntaxError) Diagnostic(path string) diag.Diagnostic {
	return diag.NewError(e.Code, e.Msg).At(path, e.Line).WithSpan(e.Span)
}

// scanner finds the end of a region. Newlines it crosses are counted and
// handed to newline, which forwards them to the output.
type scanner struct {
	cur     *Cursor
	intro   byte
	lines   *LineTracker
	newline func() error
}

// scan expects the cursor on an introducer and leaves it after the closing
// introducer. Only the chosen delimiter pair is counted; quotes, comments and
// the other pair mean nothing here.
func (s *scanner) scan() (Region, error) {
	start := s.cur.Mark()
	startLine := s.lines.Line()
	s.cur.Bump()

	if s.cur.EOF() {
		return Region{}, s.fail(start, diag.SynUnexpectedEOF, "Unexpected end of input")
	}
	kind, ok := kindOf(s.cur.Peek())
	if !ok {
		return Region{}, s.fail(start, diag.SynBadIntroducer,
			fmt.Sprintf("Expected open brace or open paren after '%c'", s.intro))
	}
	open, closing := kind.Open(), kind.Close()
	s.cur.Bump()
	innerStart := s.cur.Mark()

	depth := 1
	for depth > 0 {
		if s.cur.EOF() {
			return Region{}, s.fail(start, diag.SynUnmatchedDelimiter, fmt.Sprintf("Unmatched '%c'", open))
		}
		switch s.cur.Bump() {
		case '\n':
			s.lines.Advance()
			if err := s.newline(); err != nil {
				return Region{}, err
			}
		case open:
			depth++
		case closing:
			depth--
		}
	}
	inner := s.cur.SpanFrom(innerStart)
	inner.End-- // closing delimiter

	if !s.cur.Eat(s.intro) {
		return Region{}, s.fail(start, diag.SynMissingCloseIntroducer,
			fmt.Sprintf("Expected '%c' after closing delimiter", s.intro))
	}
	return Region{
		Kind:      kind,
		Span:      s.cur.SpanFrom(start),
		Inner:     inner,
		StartLine: startLine,
		EndLine:   s.lines.Line(),
	}, nil
}

func (s *scanner) fail(start Mark, code diag.Code, msg string) *SyntaxError {
	return &SyntaxError{
		Code: code,
		Msg:  msg,
		Span: s.cur.SpanFrom(start),
		Line: s.lines.Line(),
	}
}
