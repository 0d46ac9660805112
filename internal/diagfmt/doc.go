// Package diagfmt renders diagnostics for the diagnostic stream.
//
// Plain is the default and prints exactly one line per diagnostic, in the
// format downstream scripts already parse. Pretty adds severity, code and a
// source snippet; JSON emits one document for the whole run.
package diagfmt
