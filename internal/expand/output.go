package expand

import (
	"bufio"
	"bytes"
	"io"
)

// Interleaver merges copied source text, rendered results and whatever the
// evaluator writes on its own into one stream. Copies are buffered; Flush must
// run before every evaluator call because the evaluator writes to Direct.
type Interleaver struct {
	direct  io.Writer
	buf     *bufio.Writer
	markers bool
	lines   int
}

// NewInterleaver wraps w. markers switches the `#line` marker on.
func NewInterleaver(w io.Writer, markers bool) *Interleaver {
	return &Interleaver{
		direct:  w,
		buf:     bufio.NewWriter(w),
		markers: markers,
	}
}

// Direct is the unbuffered writer the evaluator's output port should use.
func (o *Interleaver) Direct() io.Writer {
	return o.direct
}

// Marker writes `#line 1 "<path>"` for the start of a file. The path is
// written as given, without quoting.
func (o *Interleaver) Marker(path string) error {
	if !o.markers {
		return nil
	}
	if _, err := o.buf.WriteString("#line 1 \""); err != nil {
		return err
	}
	if _, err := o.buf.WriteString(path); err != nil {
		return err
	}
	_, err := o.buf.WriteString("\"\n")
	return err
}

// Literal copies source bytes unchanged.
func (o *Interleaver) Literal(b []byte) error {
	o.lines += bytes.Count(b, []byte{'\n'})
	_, err := o.buf.Write(b)
	return err
}

// Newline forwards one newline crossed inside a region.
func (o *Interleaver) Newline() error {
	o.lines++
	return o.buf.WriteByte('\n')
}

// Result appends rendered text. It never adds a newline and is not counted
// as source lines.
func (o *Interleaver) Result(text string) error {
	_, err := o.buf.WriteString(text)
	return err
}

// Flush pushes buffered bytes to the underlying writer.
func (o *Interleaver) Flush() error {
	return o.buf.Flush()
}

// SourceLines is the number of source newlines written so far.
func (o *Interleaver) SourceLines() int {
	return o.lines
}
