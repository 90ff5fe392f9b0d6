package ui

import (
	"fmt"
	"path/filepath"
	"strings"
)

// renderReport lists the session's operations, problems first.
func (m Model) renderReport() string {
	var b strings.Builder

	s, w, f := m.report.Counts()
	var stats strings.Builder
	stats.WriteString(okStyle.Render(fmt.Sprintf("✓ %d ok", s)))
	if w > 0 {
		stats.WriteString("  " + warnStyle.Render(fmt.Sprintf("⚠ %d partial", w)))
	}
	if f > 0 {
		stats.WriteString("  " + errorStyle.Render(fmt.Sprintf("✗ %d failed", f)))
	}
	fmt.Fprintf(&stats, "\nroot %s  |  since %s", m.report.Root, m.report.StartedAt.Format("15:04:05"))
	b.WriteString(emptyBoxStyle.Render(stats.String()))
	b.WriteString("\n")

	if len(m.report.Entries) == 0 {
		b.WriteString(subtleStyle.Render("No operations yet.") + "\n")
		return b.String()
	}

	var successes, warnings, failures []ReportEntry
	for _, e := range m.report.Entries {
		switch e.Status {
		case ReportSuccess:
			successes = append(successes, e)
		case ReportWarning:
			warnings = append(warnings, e)
		case ReportFailure:
			failures = append(failures, e)
		}
	}

	if len(failures) > 0 {
		b.WriteString(errorStyle.Render("FAILED") + "\n")
		for _, e := range failures {
			fmt.Fprintf(&b, "  %s %s - %s\n", e.At.Format("15:04:05"), m.reportTarget(e), e.Error)
		}
		b.WriteString("\n")
	}

	if len(warnings) > 0 {
		b.WriteString(warnStyle.Render("PARTIAL") + "\n")
		for _, e := range warnings {
			fmt.Fprintf(&b, "  %s %s - %d left\n", e.At.Format("15:04:05"), m.reportTarget(e), len(e.Remaining))
			for _, r := range e.Remaining {
				b.WriteString("      " + subtleStyle.Render(m.relative(r)) + "\n")
			}
		}
		b.WriteString("\n")
	}

	if len(successes) > 0 {
		b.WriteString(okStyle.Render("DONE") + "\n")
		for _, e := range successes {
			fmt.Fprintf(&b, "  %s %s\n", e.At.Format("15:04:05"), m.reportTarget(e))
		}
	}
	return b.String()
}

func (m Model) reportTarget(e ReportEntry) string {
	if e.Dest == "" {
		return fmt.Sprintf("%-6s %s", e.Op, m.relative(e.Path))
	}
	return fmt.Sprintf("%-6s %s -> %s", e.Op, m.relative(e.Path), m.relative(e.Dest))
}

// relative shortens paths below the root for display.
func (m Model) relative(p string) string {
	rel, err := filepath.Rel(m.report.Root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return rel
}

func (m *Model) updateReportViewport() {
	m.viewport.SetContent(m.renderReport())
}
