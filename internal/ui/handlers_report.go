package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) openReport() (Model, tea.Cmd) {
	m.state = stateReport
	m.updateReportViewport()
	m.viewport.GotoTop()
	return m, nil
}

func (m Model) handleReportKey(key string) (Model, tea.Cmd) {
	switch key {
	// scrolling
	case "j", "down":
		m.viewport.SetYOffset(m.viewport.YOffset + 1)
	case "k", "up":
		m.viewport.SetYOffset(max(m.viewport.YOffset-1, 0))
	case "ctrl+d", "pgdown":
		m.viewport.SetYOffset(m.viewport.YOffset + m.pageSize())
	case "ctrl+u", "pgup":
		m.viewport.SetYOffset(max(m.viewport.YOffset-m.pageSize(), 0))
	case "esc", "enter", "R", "b":
		m.state = stateBrowse
		m.viewport.SetYOffset(0)
		m.updateViewportContent()
		m.ensureCursorVisible()
	case "ctrl+c", "q":
		m.state = stateQuit
		return m, tea.Quit
	}
	return m, nil
}
