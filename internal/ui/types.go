package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"filemanager/internal/config"
	"filemanager/internal/core/browser"
)

// --- Model / State ---
type state int

const (
	stateBrowse state = iota
	statePrompt
	stateConfirm
	stateBusy
	stateReport
	stateQuit
)

// opKind names a mutating operation issued from the listing.
type opKind int

const (
	opMkdir opKind = iota
	opCreateFile
	opRename
	opCopy
	opDelete
)

func (k opKind) String() string {
	switch k {
	case opMkdir:
		return "mkdir"
	case opCreateFile:
		return "create"
	case opRename:
		return "rename"
	case opCopy:
		return "copy"
	case opDelete:
		return "delete"
	}
	return "unknown"
}

// label is the capitalised name used in status lines.
func (k opKind) label() string {
	switch k {
	case opMkdir:
		return "New folder"
	case opCreateFile:
		return "New file"
	}
	s := k.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// slow operations walk whole trees and can be cancelled
func (k opKind) slow() bool { return k == opCopy || k == opDelete }

// opRequest carries everything needed to (re-)issue an operation.
type opRequest struct {
	kind      opKind
	dir       string // directory the request was issued in
	target    string // entry name in dir
	name      string // new name (mkdir, create, rename, copy)
	dest      string // destination directory for copy; empty = current
	overwrite bool
}

type confirmKind int

const (
	confirmDelete confirmKind = iota
	confirmOverwrite
)

type PromptState struct {
	input textinput.Model
	req   opRequest // request completed by the prompt value
}

type ConfirmState struct {
	kind confirmKind
	req  opRequest
}

type FilterState struct {
	filtering bool
	input     textinput.Model
	query     string
	// visible maps list positions to indices in entries
	visible []int
}

type Model struct {
	state         state
	cfg           config.Config
	browser       *browser.Browser
	statusMsg     string
	width, height int

	// listing of the current directory
	entries    []browser.Entry
	listErr    error
	listIndex  int
	showHidden bool

	viewport viewport.Model
	spinner  spinner.Model

	filter    FilterState
	filterCfg FilterConfig
	prompt    PromptState
	confirm   ConfirmState

	// running slow operation
	busy       opRequest
	busyCancel context.CancelFunc

	watcher *dirWatcher
	report  *Report
}
