package ui

import (
	"context"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"filemanager/internal/core/browser"
)

// ---------- Messages / Cmds ----------

// opDoneMsg reports the outcome of a mutating operation.
type opDoneMsg struct {
	req opRequest
	err error
}

// openDoneMsg is sent when the external opener returns.
type openDoneMsg struct {
	path string
	err  error
}

// runOp executes req against b. It never touches the model, so it is safe to
// call from a tea.Cmd.
func runOp(ctx context.Context, b *browser.Browser, req opRequest) error {
	switch req.kind {
	case opMkdir:
		return b.CreateDirectory(req.name)
	case opCreateFile:
		base, ext := splitExt(req.name)
		return b.CreateFile(base, ext)
	case opRename:
		return b.Rename(req.target, req.name, req.overwrite)
	case opCopy:
		return b.Copy(ctx, req.target, req.dest, req.name, req.overwrite)
	case opDelete:
		return b.Delete(ctx, req.target)
	}
	return nil
}

func (m Model) opCmd(ctx context.Context, req opRequest) tea.Cmd {
	b := m.browser
	return func() tea.Msg {
		return opDoneMsg{req: req, err: runOp(ctx, b, req)}
	}
}

// openCmd hands path to the configured opener, suspending the TUI meanwhile.
func (m Model) openCmd(path string) tea.Cmd {
	args := strings.Fields(m.cfg.Opener)
	if len(args) == 0 {
		return nil
	}
	c := exec.Command(args[0], append(args[1:], path)...)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return openDoneMsg{path: path, err: err}
	})
}

// splitExt splits "notes.md" into ("notes", "md"). A name without a dot, or
// one that only starts with a dot, has no extension.
func splitExt(name string) (string, string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return strings.TrimSuffix(name, "."), ""
	}
	return name[:i], name[i+1:]
}
