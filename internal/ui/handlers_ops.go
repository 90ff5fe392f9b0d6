package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"filemanager/internal/core/browser"
	"filemanager/internal/infra/logx"
)

func (m Model) startPrompt(req opRequest, placeholder, value string) (Model, tea.Cmd) {
	m.state = statePrompt
	m.prompt.req = req
	m.prompt.input.Placeholder = placeholder
	m.prompt.input.SetValue(value)
	m.prompt.input.CursorEnd()
	m.prompt.input.Focus()
	return m, textinput.Blink
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompt.input.Blur()
		m.state = stateBrowse
		m.statusMsg = "Cancelled"
		return m, nil
	case "ctrl+c":
		m.state = stateQuit
		return m, tea.Quit
	case "enter":
		value := strings.TrimSpace(m.prompt.input.Value())
		if value == "" {
			m.statusMsg = "Name is empty"
			return m, nil
		}
		m.prompt.input.Blur()
		m.state = stateBrowse
		req := m.prompt.req
		if req.kind == opCopy {
			req.dest, req.name = splitDest(value, req.target)
		} else {
			req.name = value
		}
		return m.dispatch(req)
	default:
		var cmd tea.Cmd
		m.prompt.input, cmd = m.prompt.input.Update(msg)
		return m, cmd
	}
}

// splitDest reads a copy target: "name" copies next to the source,
// "dir/name" copies into dir (absolute or relative to the current directory)
// and "dir/" copies into dir keeping the source name.
func splitDest(value, source string) (dir, name string) {
	if strings.HasSuffix(value, string(filepath.Separator)) {
		return filepath.Clean(value), source
	}
	value = filepath.Clean(value)
	if !strings.ContainsRune(value, filepath.Separator) {
		return "", value
	}
	return filepath.Dir(value), filepath.Base(value)
}

func (m Model) handleConfirmKey(key string) (Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		m.state = stateBrowse
		req := m.confirm.req
		if m.confirm.kind == confirmOverwrite {
			req.overwrite = true
		}
		return m.dispatch(req)
	case "n", "N", "esc", "q":
		m.state = stateBrowse
		m.statusMsg = "Cancelled"
	case "ctrl+c":
		m.state = stateQuit
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleBusyKey(key string) (Model, tea.Cmd) {
	switch key {
	case "esc", "ctrl+c":
		if m.busyCancel != nil {
			m.busyCancel()
		}
		m.statusMsg = "Cancelling " + m.busy.kind.String() + "…"
	}
	return m, nil
}

// dispatch runs req in the directory it was issued in. Quick operations run
// inside Update; copy and delete run in the background with a spinner and
// block navigation until they finish.
func (m Model) dispatch(req opRequest) (Model, tea.Cmd) {
	if req.dir == "" {
		req.dir = m.browser.CurrentPath()
	}
	if !req.kind.slow() {
		return m.handleOpDone(opDoneMsg{req: req, err: runOp(context.Background(), m.browser, req)})
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.state = stateBusy
	m.busy = req
	m.busyCancel = cancel
	m.statusMsg = ""
	return m, tea.Batch(m.spinner.Tick, m.opCmd(ctx, req))
}

func (m Model) handleOpDone(msg opDoneMsg) (Model, tea.Cmd) {
	req := msg.req
	if req.kind.slow() {
		if m.busyCancel != nil {
			m.busyCancel()
			m.busyCancel = nil
		}
		m.state = stateBrowse
	}
	path, dest := m.opPaths(req)

	switch {
	case msg.err == nil:
		m.report.AddSuccess(req.kind.String(), path, dest)
		m.statusMsg = doneMessage(req)
	case errors.Is(msg.err, browser.ErrAlreadyExists) && !req.overwrite &&
		(req.kind == opRename || req.kind == opCopy):
		m.state = stateConfirm
		m.confirm = ConfirmState{kind: confirmOverwrite, req: req}
		return m, nil
	case errors.Is(msg.err, context.Canceled):
		m.report.AddFailure(req.kind.String(), path, dest, msg.err)
		m.statusMsg = req.kind.label() + " cancelled"
	default:
		m.report.AddFailure(req.kind.String(), path, dest, msg.err)
		m.statusMsg = describeErr(req.kind.label(), msg.err)
		logx.Warnw("operation failed", logx.Fields{"op": req.kind.String(), "path": path, "error": msg.err.Error()})
	}

	m.reload()
	if msg.err == nil {
		switch req.kind {
		case opMkdir, opRename:
			m.selectName(req.name)
		case opCreateFile:
			base, ext := splitExt(req.name)
			if ext == "" {
				ext = browser.DefaultExtension
			}
			m.selectName(base + "." + ext)
		case opCopy:
			if req.dest == "" {
				m.selectName(req.name)
			}
		}
		m.updateViewportContent()
		m.ensureCursorVisible()
	}
	return m, nil
}

// opPaths resolves the report paths for req against the directory it ran in.
func (m Model) opPaths(req opRequest) (path, dest string) {
	cur := req.dir
	if cur == "" {
		cur = m.browser.CurrentPath()
	}
	switch req.kind {
	case opMkdir, opCreateFile:
		return filepath.Join(cur, req.name), ""
	case opRename:
		return filepath.Join(cur, req.target), filepath.Join(cur, req.name)
	case opCopy:
		dir := req.dest
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cur, dir)
		}
		return filepath.Join(cur, req.target), filepath.Join(dir, req.name)
	}
	return filepath.Join(cur, req.target), ""
}

func doneMessage(req opRequest) string {
	switch req.kind {
	case opMkdir:
		return "Created folder " + req.name
	case opCreateFile:
		return "Created file " + req.name
	case opRename:
		return fmt.Sprintf("Renamed %s to %s", req.target, req.name)
	case opCopy:
		return fmt.Sprintf("Copied %s to %s", req.target, filepath.Join(req.dest, req.name))
	case opDelete:
		return "Deleted " + req.target
	}
	return ""
}
