package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"filemanager/internal/core/browser"
	"filemanager/internal/infra/logx"
)

// ---------- Update ----------
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch m.state {
		case statePrompt:
			return m.handlePromptKey(msg)
		case stateConfirm:
			return m.handleConfirmKey(msg.String())
		case stateBusy:
			return m.handleBusyKey(msg.String())
		case stateReport:
			return m.handleReportKey(msg.String())
		}
		if m.filter.filtering {
			return m.handleFilterInput(msg)
		}
		return m.handleBrowseKey(msg.String())

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		// title + divider + header line above, status + two help lines below
		const headerHeight, footerHeight = 3, 4
		h := msg.Height - headerHeight - footerHeight
		if h < 3 {
			h = 3
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = h
		if m.state == stateReport {
			m.updateReportViewport()
		} else {
			m.updateViewportContent()
		}

	case spinner.TickMsg:
		if m.state == stateBusy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case opDoneMsg:
		return m.handleOpDone(msg)

	case openDoneMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Open %s failed: %v", msg.path, msg.err)
			logx.Warnw("open failed", logx.Fields{"path": msg.path, "error": msg.err.Error()})
		}
		m.reload()
		return m, nil

	case dirChangedMsg:
		if msg.dir == m.browser.CurrentPath() && m.state != stateBusy && m.state != stateReport {
			m.reload()
		}
		if m.watcher == nil {
			return m, nil
		}
		return m, m.watcher.next()

	case watchErrMsg:
		logx.Warnf("watcher: %v", msg.err)
		m.statusMsg = "Auto-refresh stopped: " + msg.err.Error()
		return m, nil
	}

	return m, nil
}

// reload re-reads the current directory and keeps the cursor on the same
// entry when it still exists.
func (m *Model) reload() {
	current := m.selectedName()
	entries, err := m.browser.ListErr()
	m.entries = entries
	m.listErr = err
	if err != nil {
		logx.Debugf("list: %v", err)
	}
	m.refilter(current)
	m.updateViewportContent()
}

// changedDir is called after every successful navigation.
func (m *Model) changedDir(selectName string) tea.Cmd {
	if m.watcher != nil {
		m.watcher.Switch(m.browser.CurrentPath())
	}
	m.filter.query = ""
	m.filter.input.SetValue("")
	m.entries, m.filter.visible = nil, nil
	m.listIndex = 0
	m.viewport.SetYOffset(0)
	m.reload()
	if selectName != "" {
		m.selectName(selectName)
		m.updateViewportContent()
		m.ensureCursorVisible()
	}
	return tea.SetWindowTitle(m.browser.CurrentPath())
}

func (m Model) itemsLen() int { return len(m.filter.visible) }

// entryAt returns the entry at list position i.
func (m Model) entryAt(i int) (browser.Entry, bool) {
	if i < 0 || i >= len(m.filter.visible) {
		return browser.Entry{}, false
	}
	return m.entries[m.filter.visible[i]], true
}

func (m Model) selected() (browser.Entry, bool) { return m.entryAt(m.listIndex) }

func (m Model) selectedName() string {
	if e, ok := m.selected(); ok {
		return e.Name
	}
	return ""
}

// selectName moves the cursor onto name if it is visible, otherwise clamps it.
func (m *Model) selectName(name string) {
	if name != "" {
		for i := range m.filter.visible {
			if m.entries[m.filter.visible[i]].Name == name {
				m.listIndex = i
				return
			}
		}
	}
	if n := m.itemsLen(); m.listIndex >= n {
		m.listIndex = n - 1
	}
	if m.listIndex < 0 {
		m.listIndex = 0
	}
}

// describeErr turns a browser error into a status line.
func describeErr(action string, err error) string {
	var pf *browser.PartialFailureError
	switch {
	case errors.As(err, &pf):
		return fmt.Sprintf("%s incomplete: %d item(s) could not be removed", action, len(pf.Remaining))
	case errors.Is(err, browser.ErrNotFound):
		return action + " failed: not found"
	case errors.Is(err, browser.ErrAlreadyExists):
		return action + " failed: name already taken"
	case errors.Is(err, browser.ErrPermission):
		return action + " failed: permission denied"
	case errors.Is(err, browser.ErrInvalidName):
		return action + " failed: invalid name"
	}
	return fmt.Sprintf("%s failed: %v", action, err)
}
