package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"schemepp/internal/version"
)

const usageLine = "Usage: schemepp [flags] <file>..."

// exitError carries a status code out of RunE. Its diagnostics have already
// been printed, so main prints nothing more.
type exitError struct{ code int }

func (e exitError) Error() string {
	return "exit status " + strconv.Itoa(e.code)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schemepp [flags] <file>...",
		Short: "Expand Scheme escapes in text files",
		Long: `schemepp copies each input to the output, replacing $(...)$ regions with the
displayed value of the Scheme form and evaluating ${...}$ regions for effect.
Every file starts with a #line marker and keeps its line numbering.`,
		Version:       version.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runExpand,
	}
	cmd.SetVersionTemplate(version.Line(isTerminal(os.Stdout)) + "\n")

	flags := cmd.Flags()
	flags.StringP("output", "o", "", "write the expansion to `file` instead of stdout")
	flags.String("introducer", "", "region introducer byte (default \"$\")")
	flags.Bool("no-line-markers", false, "do not emit #line markers")
	flags.String("diag-format", "plain", "diagnostic format (plain|pretty|json)")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.String("path-mode", "as-is", "path display for pretty/json diagnostics (as-is|absolute|relative|basename)")
	flags.Int("max-diagnostics", 0, "maximum number of diagnostics in json output (0 = all)")
	flags.String("map", "", "write a msgpack expansion map to `file`")
	flags.String("config", "", "use this schemepp.toml instead of searching for one")
	flags.String("trace", "", "trace output file (- for stderr, .ndjson for NDJSON)")
	flags.String("trace-level", "off", "trace level (off|error|run|file|region)")
	flags.Duration("trace-heartbeat", 0, "emit a trace heartbeat at this interval (0 = off)")
	flags.Bool("timings", false, "show timing information")
	flags.String("cpu-profile", "", "write a CPU profile to `file`")
	flags.String("mem-profile", "", "write a heap profile to `file` on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to `file`")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ee exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
