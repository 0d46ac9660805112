package source

import "fmt"

// Reason values match the wording printed in "Error reading" diagnostics.
const (
	ReasonOpen = "failed to open file"
	ReasonStat = "failed to stat file"
	ReasonRead = "failed to read file"
)

// ReadError reports a file that could not be loaded into a FileSet.
type ReadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
