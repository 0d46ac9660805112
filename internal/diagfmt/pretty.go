package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"schemepp/internal/diag"
	"schemepp/internal/source"
)

type palette struct {
	path, code, caret, gutter *color.Color
	sev                       map[diag.Severity]*color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		path:   mk(color.Bold),
		code:   mk(color.FgHiBlack),
		caret:  mk(color.FgGreen, color.Bold),
		gutter: mk(color.FgBlue),
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   mk(color.FgRed, color.Bold),
			diag.SevWarning: mk(color.FgYellow, color.Bold),
			diag.SevInfo:    mk(color.FgCyan),
		},
	}
}

// Pretty форматирует диагностики в человекочитаемый вид:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//	   3 | x = $(car 1)$;
//	     |     ^~~~~~~~~
//
// Column and snippet appear only when the diagnostic points into a loaded file.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	for _, d := range bag.Items() {
		if err := PrettyOne(w, d, fs, opts); err != nil {
			return err
		}
	}
	return nil
}

// PrettyOne renders a single diagnostic.
func PrettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	var sb strings.Builder

	var file *source.File
	var start source.LineCol
	if d.HasSpan && fs != nil {
		if file = fs.Get(d.Primary.File); file != nil {
			start, _ = fs.Resolve(d.Primary)
		}
	}

	if path := displayPath(d.Path, opts.PathMode, opts.BaseDir); path != "" {
		loc := path
		if d.Line > 0 {
			loc += ":" + strconv.FormatUint(uint64(d.Line), 10)
			if file != nil && start.Line == d.Line {
				loc += ":" + strconv.FormatUint(uint64(start.Col), 10)
			}
		}
		sb.WriteString(p.path.Sprint(loc))
		sb.WriteString(": ")
	}
	sev, ok := p.sev[d.Severity]
	if !ok {
		sev = p.sev[diag.SevInfo]
	}
	sb.WriteString(sev.Sprint(d.Severity.String()))
	sb.WriteString(" ")
	sb.WriteString(p.code.Sprint(d.Code.ID()))
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	sb.WriteString("\n")

	if file != nil {
		writeSnippet(&sb, p, file, d.Primary, start)
	}
	if opts.ShowNotes {
		for _, n := range d.Notes {
			sb.WriteString("  = note: ")
			sb.WriteString(n.Msg)
			sb.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// writeSnippet prints the first line of the span with a caret underline.
// Display width comes from runewidth so wide runes keep the caret aligned.
func writeSnippet(sb *strings.Builder, p palette, f *source.File, sp source.Span, start source.LineCol) {
	line := f.GetLine(start.Line)
	col := int(start.Col) - 1
	if col < 0 || col > len(line) {
		return
	}
	gutter := strconv.FormatUint(uint64(start.Line), 10)
	pad := strings.Repeat(" ", len(gutter))

	fmt.Fprintf(sb, " %s %s %s\n", p.gutter.Sprint(gutter), p.gutter.Sprint("|"), line)

	var indent strings.Builder
	for _, r := range line[:col] {
		if r == '\t' {
			indent.WriteByte('\t')
			continue
		}
		indent.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}

	rest := line[col:]
	if n := int(sp.Len()); n < len(rest) {
		rest = rest[:n]
	}
	width := max(runewidth.StringWidth(rest), 1)
	underline := "^" + strings.Repeat("~", width-1)

	fmt.Fprintf(sb, " %s %s %s%s\n", pad, p.gutter.Sprint("|"), indent.String(), p.caret.Sprint(underline))
}
