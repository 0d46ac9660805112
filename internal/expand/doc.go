// Package expand is the preprocessing engine.
//
// It copies a source file to the output byte for byte, except for escape
// regions. A region starts with the introducer ('$' by default) followed by
// '(' or '{' and ends at the matching close delimiter followed by the
// introducer again:
//
//	$(+ 1 2)$          display region, the rendered result replaces it
//	${define x 10}$    silent region, evaluated for effect only
//
// The inner text is wrapped in one pair of parentheses and handed to the
// evaluator exactly once. Newlines inside a region are still written to the
// output so that every source line maps to exactly one output line, and each
// file starts with a `#line 1 "<path>"` marker.
package expand
