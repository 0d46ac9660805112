package diagfmt

import (
	"schemepp/internal/source"
)

// displayPath formats a diagnostic path. Diagnostics without a loaded file
// (read failures) still get the mode applied through a throwaway File.
func displayPath(path string, mode PathMode, baseDir string) string {
	if path == "" {
		return ""
	}
	f := source.File{Path: path}
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", baseDir)
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return path
	}
}
