package diag

import (
	"schemepp/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one finding of a run.
//
// Path and Line carry the position the finding is attributed to. For syntax and
// evaluator findings Primary points into the loaded file as well; I/O and CLI
// findings have no loaded file and leave HasSpan false.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Path     string
	Line     uint32 // 1-based, 0 when unknown
	Primary  source.Span
	HasSpan  bool
	Notes    []Note
}

func New(sev Severity, code Code, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
	}
}

func NewError(code Code, msg string) Diagnostic {
	return New(SevError, code, msg)
}

// At attributes the diagnostic to path:line.
func (d Diagnostic) At(path string, line uint32) Diagnostic {
	d.Path = path
	d.Line = line
	return d
}

// WithSpan attaches a span inside a loaded file.
func (d Diagnostic) WithSpan(sp source.Span) Diagnostic {
	d.Primary = sp
	d.HasSpan = true
	return d
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
