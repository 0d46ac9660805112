package diagfmt

import (
	"fmt"
	"io"

	"schemepp/internal/diag"
	"schemepp/internal/source"
)

// Streamer is a diag.Reporter for the diagnostic stream. Plain and pretty
// diagnostics are written as soon as they are reported; JSON ones are
// collected and written by Finish as one document.
type Streamer struct {
	w      io.Writer
	format Format
	fs     *source.FileSet
	pretty PrettyOpts
	json   JSONOpts
	bag    *diag.Bag
	count  int
	err    error
}

// StreamerOpts configures a Streamer.
type StreamerOpts struct {
	Format Format
	Pretty PrettyOpts
	JSON   JSONOpts
}

// NewStreamer creates a streamer writing to w. fs resolves spans for pretty and JSON output.
func NewStreamer(w io.Writer, fs *source.FileSet, opts StreamerOpts) *Streamer {
	return &Streamer{
		w:      w,
		format: opts.Format,
		fs:     fs,
		pretty: opts.Pretty,
		json:   opts.JSON,
		bag:    diag.NewBag(0),
	}
}

// Report implements diag.Reporter.
func (s *Streamer) Report(d diag.Diagnostic) {
	s.count++
	switch s.format {
	case FormatJSON:
		s.bag.Add(d)
	case FormatPretty:
		s.keep(PrettyOne(s.w, d, s.fs, s.pretty))
	default:
		_, err := fmt.Fprintln(s.w, PlainLine(d))
		s.keep(err)
	}
}

func (s *Streamer) keep(err error) {
	if err != nil && s.err == nil {
		s.err = err
	}
}

// Count returns the number of diagnostics reported so far.
func (s *Streamer) Count() int {
	return s.count
}

// Finish writes collected JSON output and returns the first write error.
func (s *Streamer) Finish() error {
	if s.format == FormatJSON {
		s.keep(JSON(s.w, s.bag, s.fs, s.json))
	}
	return s.err
}
