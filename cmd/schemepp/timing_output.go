package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"schemepp/internal/observ"
)

type timingStyles struct {
	title, phase, file, ms, note lipgloss.Style
}

func newTimingStyles(colored bool) timingStyles {
	if !colored {
		plain := lipgloss.NewStyle()
		return timingStyles{title: plain, phase: plain, file: plain, ms: plain, note: plain}
	}
	return timingStyles{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")),
		phase: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		file:  lipgloss.NewStyle().Bold(true),
		ms:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		note:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// printTimings writes one aligned row per phase:
//
//	timings: total 0.42 ms
//	  load    a.in  0.03 ms  18 bytes
//	  expand  a.in  0.39 ms  2 regions
func printTimings(out io.Writer, report observ.Report, colored bool) error {
	st := newTimingStyles(colored)

	phaseW, fileW, msW := 0, 0, 0
	ms := make([]string, len(report.Phases))
	for i, p := range report.Phases {
		ms[i] = fmt.Sprintf("%.2f ms", p.DurationMS)
		phaseW = max(phaseW, lipgloss.Width(p.Name))
		fileW = max(fileW, lipgloss.Width(p.File))
		msW = max(msW, lipgloss.Width(ms[i]))
	}

	var sb strings.Builder
	sb.WriteString(st.title.Render(fmt.Sprintf("timings: total %.2f ms", report.TotalMS)))
	sb.WriteString("\n")
	for i, p := range report.Phases {
		row := []string{
			st.phase.Width(phaseW).Render(p.Name),
			st.file.Width(fileW).Render(p.File),
			st.ms.Width(msW).Align(lipgloss.Right).Render(ms[i]),
		}
		if p.Note != "" {
			row = append(row, st.note.Render(p.Note))
		}
		sb.WriteString("  ")
		sb.WriteString(strings.Join(row, "  "))
		sb.WriteString("\n")
	}
	_, err := io.WriteString(out, sb.String())
	return err
}
