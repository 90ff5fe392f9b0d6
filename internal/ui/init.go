package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"filemanager/internal/config"
	"filemanager/internal/core/browser"
	"filemanager/internal/infra/logx"
)

// NewModel builds the TUI around an opened browser.
func NewModel(b *browser.Browser, cfg config.Config) Model {
	m := Model{
		state:      stateBrowse,
		cfg:        cfg,
		browser:    b,
		showHidden: cfg.ShowHidden,
		report:     NewReport(b.RootPath()),
	}

	// filter
	fi := textinput.New()
	fi.Placeholder = "filter…"
	fi.CharLimit = 200
	fi.Width = 40
	m.filter.input = fi
	m.filterCfg = FilterConfig{
		MinCoverage: 0.6,
		MaxSpread:   40,
		MaxResults:  500,
	}

	// name prompt
	pi := textinput.New()
	pi.CharLimit = 255
	pi.Width = 40
	m.prompt.input = pi

	// spinner
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = subtleStyle
	m.spinner = sp

	// viewport
	vp := viewport.New(80, 20) // resized on WindowSizeMsg
	m.viewport = vp

	if cfg.Watch {
		w, err := newDirWatcher(b.CurrentPath())
		if err != nil {
			logx.Warnf("watch disabled: %v", err)
		} else {
			m.watcher = w
		}
	}

	m.reload()
	return m
}

func (m Model) Init() tea.Cmd {
	if m.watcher == nil {
		return tea.SetWindowTitle(m.browser.CurrentPath())
	}
	return tea.Batch(tea.SetWindowTitle(m.browser.CurrentPath()), m.watcher.next())
}

// CurrentPath is the directory shown when the program ended.
func (m Model) CurrentPath() string { return m.browser.CurrentPath() }

// Report returns the operations recorded during the session.
func (m Model) Report() *Report { return m.report }

// Close releases the directory watcher and cancels a running operation.
func (m Model) Close() {
	if m.busyCancel != nil {
		m.busyCancel()
	}
	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			logx.Debugf("close watcher: %v", err)
		}
	}
}
