package ui

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"filemanager/internal/core/browser"
)

func (m Model) View() string {
	if m.state == stateQuit {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.browser.CurrentPath()))
	b.WriteString("\n")
	b.WriteString(dividerStyle.Render(strings.Repeat("─", max(10, m.width-2))))
	b.WriteString("\n")
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	switch m.state {
	case statePrompt:
		return m.prompt.input.Placeholder + ": " + m.prompt.input.View()
	case stateConfirm:
		return confirmBoxStyle.Render(m.confirmQuestion())
	case stateBusy:
		return m.spinner.View() + " " + m.busy.kind.label() + " " + m.busy.target + "…"
	case stateReport:
		return "Operation report  |  " + m.report.Summary()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d entries", m.itemsLen())
	if m.filter.filtering {
		b.WriteString("  |  Filter: " + m.filter.input.View())
	} else if m.filter.query != "" {
		b.WriteString("  |  Filter: " + m.filter.query)
	}
	if m.showHidden {
		b.WriteString("  |  " + subtleStyle.Render("hidden shown"))
	}
	return b.String()
}

func (m Model) confirmQuestion() string {
	req := m.confirm.req
	switch m.confirm.kind {
	case confirmDelete:
		return warnStyle.Render("Delete "+req.target+"?") + " Directories are removed with everything inside.  (y/n)"
	case confirmOverwrite:
		_, dest := m.opPaths(req)
		return warnStyle.Render(dest+" already exists.") + " Overwrite?  (y/n)"
	}
	return ""
}

// updateViewportContent re-renders the listing into the viewport.
func (m *Model) updateViewportContent() {
	m.viewport.SetContent(m.renderListing())
}

func (m Model) renderListing() string {
	if m.listErr != nil && len(m.entries) == 0 {
		return emptyBoxStyle.Render(errorStyle.Render(describeErr("Listing", m.listErr)))
	}
	if len(m.entries) == 0 {
		return emptyBoxStyle.Render(subtleStyle.Render("This folder is empty.") + "\n" +
			helpStyle.Render("n new folder  |  N new file  |  h go up"))
	}
	if m.itemsLen() == 0 {
		return emptyBoxStyle.Render(warnStyle.Render("Nothing matches (filter or hidden entries?)") + "\n" +
			helpStyle.Render("F clear filter  |  . toggle hidden"))
	}

	width := m.width - 2
	if width <= 0 {
		width = 78
	}
	lines := make([]string, 0, m.itemsLen())
	for i := range m.filter.visible {
		e, _ := m.entryAt(i)
		content := displayEntry(e)
		cursorCell := " "
		if i == m.listIndex {
			content = cursorLineStyle.Width(width).Render(content)
			cursorCell = cursorBarStyle.Render(" ")
		} else {
			content = lipgloss.NewStyle().Width(width).Render(content)
		}
		lines = append(lines, cursorCell+" "+content)
	}
	return strings.Join(lines, "\n")
}

// displayEntry renders a listing row: type marker, name, size for files.
func displayEntry(e browser.Entry) string {
	symbol, name := symbolFile, e.Name
	switch {
	case e.Mode&fs.ModeSymlink != 0:
		symbol, name = symbolLink, linkNameStyle.Render(e.Name)
		if e.IsDir {
			name += "/"
		}
	case e.IsDir:
		symbol, name = symbolDir, dirNameStyle.Render(e.Name+"/")
	}
	if e.IsDir {
		return symbol + " " + name
	}
	return symbol + " " + name + "  " + subtleStyle.Render(humanSize(e.Size))
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func (m Model) renderFooter() string {
	status := m.statusMsg
	if status == "" {
		status = m.report.Summary()
	}
	switch m.state {
	case statePrompt:
		return renderFooter(status, "enter confirm  |  esc cancel")
	case stateConfirm:
		return renderFooter(status, "y yes  |  n/esc no")
	case stateBusy:
		return renderFooter(status, "esc cancel")
	case stateReport:
		return renderFooter(status, "j/k scroll  |  esc back  |  q quit")
	}
	if m.filter.filtering {
		return renderFooter(status, "type to filter  |  enter keep  |  esc clear")
	}
	return renderFooter(status,
		"j/k move  |  enter/l open  |  h up  |  g/G top/bottom  |  f filter  |  F clear  |  . hidden  |  ctrl+r refresh",
		"n folder  |  N file  |  r rename  |  c copy  |  d delete  |  R report  |  q quit",
	)
}

// ensureCursorVisible scrolls the viewport so the cursor row stays on screen.
// Every entry takes exactly one line.
func (m *Model) ensureCursorVisible() {
	n := m.itemsLen()
	if n == 0 {
		m.listIndex = 0
		return
	}
	if m.listIndex < 0 {
		m.listIndex = 0
	}
	if m.listIndex > n-1 {
		m.listIndex = n - 1
	}

	cursorLine := m.listIndex
	topLine := m.viewport.YOffset
	bottomLine := topLine + m.viewport.Height - 1

	// start scrolling when the cursor approaches the edges
	scrollMargin := 3
	if m.viewport.Height < 8 {
		scrollMargin = 1
	}

	if cursorLine < topLine+scrollMargin {
		m.viewport.SetYOffset(max(cursorLine-scrollMargin, 0))
	} else if cursorLine > bottomLine-scrollMargin {
		m.viewport.SetYOffset(max(cursorLine-m.viewport.Height+scrollMargin+1, 0))
	}
}
