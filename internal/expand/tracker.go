package expand

// LineTracker holds the current 1-based line of the file being expanded.
// Every newline the expander consumes, literal or inside a region, advances it.
type LineTracker struct {
	line uint32
}

// NewLineTracker returns a tracker positioned on line 1.
func NewLineTracker() LineTracker {
	return LineTracker{line: 1}
}

// Line returns the current line.
func (t *LineTracker) Line() uint32 {
	return t.line
}

// Advance moves to the next line.
func (t *LineTracker) Advance() {
	t.line++
}

// Reset goes back to line 1 for the next file.
func (t *LineTracker) Reset() {
	t.line = 1
}
