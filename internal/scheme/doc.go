// Package scheme implements the small Scheme dialect evaluated inside escape
// regions.
//
// The interpreter is a tree walker over the values produced by the reader:
// there is no separate AST. Special forms are recognised by the symbol in
// head position and are reserved names. Procedure calls in tail position
// (if/cond/when/unless branches, the last form of a body, and/or) reuse the
// evaluation loop instead of growing the Go stack.
//
// Numbers are int64 or float64; there are no rationals, so (/ 7 2) is 3.5 and
// (/ 6 3) is 2. Strings are immutable. Characters, vectors and continuations
// are not supported.
//
// Output procedures (display, write, newline, format #t) write straight to the
// writer given with WithOutput. Callers sharing that writer must flush their
// own buffers before calling Eval.
//
// Every failure, including reader errors, is first offered to the hook
// registered with SetErrorHook. A hook that returns a non-nil value recovers:
// Eval returns that value and a nil error.
package scheme
