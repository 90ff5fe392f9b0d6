package ui

import (
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"filemanager/internal/config"
	"filemanager/internal/core/browser"
	"filemanager/internal/infra/logx"
)

func (m Model) handleBrowseKey(key string) (Model, tea.Cmd) {
	m.statusMsg = ""
	switch key {
	case "ctrl+c", "q":
		m.state = stateQuit
		return m, tea.Quit

	// cursor
	case "j", "down":
		if m.listIndex < m.itemsLen()-1 {
			m.listIndex++
		}
	case "k", "up":
		if m.listIndex > 0 {
			m.listIndex--
		}
	case "ctrl+d", "pgdown":
		m.listIndex = min(m.listIndex+m.pageSize(), max(0, m.itemsLen()-1))
	case "ctrl+u", "pgup":
		m.listIndex = max(m.listIndex-m.pageSize(), 0)
	case "g", "home":
		m.listIndex = 0
	case "G", "end":
		m.listIndex = max(0, m.itemsLen()-1)

	// navigation
	case "enter", "l", "right":
		return m.openSelected()
	case "h", "left", "backspace":
		return m.navigateUp()

	// operations
	case "n":
		return m.startPrompt(opRequest{kind: opMkdir}, "New folder name", "")
	case "N":
		return m.startPrompt(opRequest{kind: opCreateFile}, "New file name (default ."+browser.DefaultExtension+")", "")
	case "r":
		if e, ok := m.selected(); ok {
			return m.startPrompt(opRequest{kind: opRename, target: e.Name}, "Rename "+e.Name+" to", e.Name)
		}
	case "c":
		if e, ok := m.selected(); ok {
			return m.startPrompt(opRequest{kind: opCopy, target: e.Name}, "Copy "+e.Name+" to (name or path)", e.Name)
		}
	case "d":
		if e, ok := m.selected(); ok {
			m.state = stateConfirm
			m.confirm = ConfirmState{kind: confirmDelete, req: opRequest{kind: opDelete, target: e.Name}}
		}

	// view
	case ".":
		m.showHidden = !m.showHidden
		m.applyFilter()
		if m.showHidden {
			m.statusMsg = "Showing hidden entries"
		} else {
			m.statusMsg = "Hiding hidden entries"
		}
	case "f", "/":
		m.filter.filtering = true
		m.filter.input.SetValue(m.filter.query)
		m.filter.input.CursorEnd()
		m.filter.input.Focus()
	case "F":
		m.filter.query = ""
		m.filter.input.SetValue("")
		m.applyFilter()
	case "ctrl+r":
		m.reload()
		m.statusMsg = "Refreshed"
	case "R":
		return m.openReport()
	}
	m.updateViewportContent()
	m.ensureCursorVisible()
	return m, nil
}

// openSelected navigates into a directory or hands a file to the opener.
func (m Model) openSelected() (Model, tea.Cmd) {
	e, ok := m.selected()
	if !ok {
		return m, nil
	}
	kind, err := m.browser.NavigateInto(e.Name)
	if err != nil {
		m.statusMsg = describeErr("Open", err)
		// the entry may have vanished; show what is there now
		m.reload()
		return m, nil
	}
	if kind == browser.KindDirectory {
		return m, m.changedDir("")
	}

	path, err := m.browser.Resolve(e.Name)
	if err != nil {
		m.statusMsg = describeErr("Open", err)
		return m, nil
	}
	cmd := m.openCmd(path)
	if cmd == nil {
		m.statusMsg = "No opener configured (set OPENER in " + displayConfigPath(m.cfg) + ")"
		return m, nil
	}
	logx.Infow("open file", logx.Fields{"path": path, "opener": m.cfg.Opener})
	return m, cmd
}

func (m Model) navigateUp() (Model, tea.Cmd) {
	up := m.browser.NavigateUp()
	if up.AtBoundary {
		if m.cfg.RootPolicy == config.PolicyExit {
			m.state = stateQuit
			return m, tea.Quit
		}
		m.statusMsg = "Already at " + up.To
		return m, nil
	}
	return m, m.changedDir(filepath.Base(up.From))
}

// handleFilterInput handles filter input mode. The listing narrows while typing.
func (m Model) handleFilterInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filter.filtering = false
		m.filter.input.Blur()
		m.filter.query = ""
		m.filter.input.SetValue("")
	case "enter":
		m.filter.filtering = false
		m.filter.input.Blur()
		m.filter.query = strings.TrimSpace(m.filter.input.Value())
	case "ctrl+c":
		m.state = stateQuit
		return m, tea.Quit
	default:
		var cmd tea.Cmd
		m.filter.input, cmd = m.filter.input.Update(msg)
		m.filter.query = m.filter.input.Value()
		m.applyFilter()
		m.updateViewportContent()
		m.ensureCursorVisible()
		return m, cmd
	}
	m.applyFilter()
	m.updateViewportContent()
	m.ensureCursorVisible()
	return m, nil
}

func (m Model) pageSize() int {
	if m.viewport.Height > 1 {
		return m.viewport.Height - 1
	}
	return 10
}

func displayConfigPath(cfg config.Config) string {
	if cfg.Path == "" {
		return "config"
	}
	return cfg.Path
}
