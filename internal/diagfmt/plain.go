package diagfmt

import (
	"fmt"
	"io"

	"schemepp/internal/diag"
)

// PlainLine renders d as the single line the tool has always printed:
//
//	Unmatched '('                      syntax
//	in.c:12: car: expected pair, got 1 evaluator
//	Error reading "in.c": failed to open file
func PlainLine(d diag.Diagnostic) string {
	switch {
	case d.Code == diag.IOLoadFileError:
		return fmt.Sprintf("Error reading \"%s\": %s", d.Path, d.Message)
	case d.Code.IsSyntax() || d.Path == "":
		return d.Message
	default:
		return fmt.Sprintf("%s:%d: %s", d.Path, d.Line, d.Message)
	}
}

// Plain writes every diagnostic of bag, one line each.
func Plain(w io.Writer, bag *diag.Bag) error {
	for _, d := range bag.Items() {
		if _, err := fmt.Fprintln(w, PlainLine(d)); err != nil {
			return err
		}
	}
	return nil
}
