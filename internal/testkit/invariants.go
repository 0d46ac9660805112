// Package testkit holds invariant checks shared by tests and fuzz harnesses.
package testkit

import (
	"bytes"
	"fmt"

	"fortio.org/safecast"

	"schemepp/internal/expand"
	"schemepp/internal/source"
)

// RegionCollector is an expand.Recorder that keeps every region it sees.
type RegionCollector struct {
	Regions  []expand.Region
	Outcomes []expand.Outcome
}

// Record implements expand.Recorder.
func (c *RegionCollector) Record(_ *source.File, r expand.Region, o expand.Outcome) {
	c.Regions = append(c.Regions, r)
	c.Outcomes = append(c.Outcomes, o)
}

// CheckRegionInvariants runs a minimal set of region invariants on one file:
// 1) every span lies within the content and belongs to the file
// 2) regions are ordered and do not overlap
// 3) the region text is intro+open ... close+intro around Inner
// 4) StartLine <= EndLine and EndLine-StartLine equals the newlines inside
func CheckRegionInvariants(sf *source.File, intro byte, regions []expand.Region) error {
	if sf == nil {
		return fmt.Errorf("nil file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	var prevEnd uint32
	for i, r := range regions {
		sp := r.Span
		if sp.File != sf.ID {
			return fmt.Errorf("region %d: span file mismatch: got=%d want=%d", i, sp.File, sf.ID)
		}
		if sp.End > lenContent || sp.Len() < 4 {
			return fmt.Errorf("region %d: bad span %v (content %d bytes)", i, sp, lenContent)
		}
		if sp.Start < prevEnd {
			return fmt.Errorf("region %d: span %v overlaps previous end %d", i, sp, prevEnd)
		}
		prevEnd = sp.End

		if r.Inner.Start != sp.Start+2 || r.Inner.End != sp.End-2 {
			return fmt.Errorf("region %d: inner %v is not strictly inside %v", i, r.Inner, sp)
		}
		text := sf.Content[sp.Start:sp.End]
		open, closing := r.Kind.Open(), r.Kind.Close()
		if text[0] != intro || text[1] != open || text[len(text)-2] != closing || text[len(text)-1] != intro {
			return fmt.Errorf("region %d: %q is not delimited as %s", i, text, r.Kind)
		}

		if r.EndLine < r.StartLine {
			return fmt.Errorf("region %d: end line %d before start line %d", i, r.EndLine, r.StartLine)
		}
		nl := bytes.Count(text, []byte{'\n'})
		if int(r.EndLine-r.StartLine) != nl {
			return fmt.Errorf("region %d: spans %d lines but contains %d newlines", i, r.EndLine-r.StartLine, nl)
		}
	}
	return nil
}

// CheckLinesPreserved compares newline counts of input and expansion.
// extra is the number of newlines results are allowed to add (rendered text
// and evaluator output); markers are not counted and must be stripped first.
func CheckLinesPreserved(input, output []byte, extra int) error {
	in := bytes.Count(input, []byte{'\n'})
	out := bytes.Count(output, []byte{'\n'})
	if out != in+extra {
		return fmt.Errorf("expansion has %d newlines, source has %d (+%d from results)", out, in, extra)
	}
	return nil
}
