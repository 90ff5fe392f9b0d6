package ui

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"filemanager/internal/config"
	"filemanager/internal/core/browser"
)

// createKeyMsg creates a KeyMsg from a string representation
func createKeyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

// setupTree creates:
//
//	alpha/inner.txt
//	beta/
//	notes.txt
//	readme.md
//	.hidden
func setupTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	mustMkdir(t, filepath.Join(root, "alpha"))
	mustMkdir(t, filepath.Join(root, "beta"))
	mustWrite(t, filepath.Join(root, "alpha", "inner.txt"), "inner")
	mustWrite(t, filepath.Join(root, "notes.txt"), "notes")
	mustWrite(t, filepath.Join(root, "readme.md"), "hello")
	mustWrite(t, filepath.Join(root, ".hidden"), "")
	return root
}

func mustMkdir(t *testing.T, p string) {
	t.Helper()
	if err := os.MkdirAll(p, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", p, err)
	}
}

func mustWrite(t *testing.T, p, content string) {
	t.Helper()
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
}

func createTestModel(t *testing.T, root string, cfg config.Config) Model {
	t.Helper()
	b, err := browser.New(root, "")
	if err != nil {
		t.Fatalf("browser.New: %v", err)
	}
	cfg.Root = root
	if cfg.RootPolicy == "" {
		cfg.RootPolicy = config.PolicyStay
	}
	cfg.Watch = false
	m := NewModel(b, cfg)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	res, cmd := m.Update(msg)
	out, ok := res.(Model)
	if !ok {
		t.Fatalf("Update returned %T", res)
	}
	return out, cmd
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = update(t, m, createKeyMsg(k))
	}
	return m, cmd
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// finishOp runs the operation issued by cmd and feeds its result back.
func finishOp(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		if done, ok := msg.(opDoneMsg); ok {
			m, _ = update(t, m, done)
			return m
		}
	}
	t.Fatal("command did not produce an opDoneMsg")
	return m
}

func visibleNames(m Model) []string {
	var out []string
	for i := 0; i < m.itemsLen(); i++ {
		e, _ := m.entryAt(i)
		out = append(out, e.Name)
	}
	return out
}

func TestNewModelListsCurrentDirectory(t *testing.T) {
	m := createTestModel(t, setupTree(t), config.Config{})
	want := []string{"alpha", "beta", "notes.txt", "readme.md"}
	if got := visibleNames(m); !reflect.DeepEqual(got, want) {
		t.Fatalf("visible = %v, want %v", got, want)
	}
	if m.state != stateBrowse {
		t.Fatalf("state = %v, want browse", m.state)
	}
}

func TestCursorMovement(t *testing.T) {
	m := createTestModel(t, setupTree(t), config.Config{})

	tests := []struct {
		keys []string
		want int
	}{
		{[]string{"j"}, 1},
		{[]string{"j", "j", "k"}, 1},
		{[]string{"k"}, 0},
		{[]string{"G"}, 3},
		{[]string{"G", "j"}, 3},
		{[]string{"G", "g"}, 0},
		{[]string{"down", "down"}, 2},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.keys, ","), func(t *testing.T) {
			got, _ := press(t, m, tt.keys...)
			if got.listIndex != tt.want {
				t.Fatalf("listIndex = %d, want %d", got.listIndex, tt.want)
			}
		})
	}
}

func TestNavigateIntoAndBack(t *testing.T) {
	root := setupTree(t)
	m := createTestModel(t, root, config.Config{})

	m, cmd := press(t, m, "j", "enter")
	if got := m.CurrentPath(); got != filepath.Join(root, "beta") {
		t.Fatalf("CurrentPath = %q", got)
	}
	if cmd == nil {
		t.Fatal("expected a window title command")
	}
	if m.itemsLen() != 0 {
		t.Fatalf("beta should be empty, got %v", visibleNames(m))
	}
	if !strings.Contains(m.View(), "This folder is empty.") {
		t.Fatal("empty state not rendered")
	}

	m, _ = press(t, m, "h")
	if m.CurrentPath() != root {
		t.Fatalf("CurrentPath = %q, want %q", m.CurrentPath(), root)
	}
	if e, _ := m.selected(); e.Name != "beta" {
		t.Fatalf("cursor on %q, want beta", e.Name)
	}
}

func TestNavigateUpAtRootStays(t *testing.T) {
	root := setupTree(t)
	m := createTestModel(t, root, config.Config{RootPolicy: config.PolicyStay})
	for _, k := range []string{"h", "left", "backspace"} {
		var cmd tea.Cmd
		m, cmd = press(t, m, k)
		if cmd != nil {
			t.Fatalf("%s: expected no command at root", k)
		}
		if m.CurrentPath() != root || m.state != stateBrowse {
			t.Fatalf("%s: moved or left browse state", k)
		}
		if !strings.HasPrefix(m.statusMsg, "Already at") {
			t.Fatalf("%s: status = %q", k, m.statusMsg)
		}
	}
}

func TestNavigateUpAtRootExits(t *testing.T) {
	m := createTestModel(t, setupTree(t), config.Config{RootPolicy: config.PolicyExit})
	m, cmd := press(t, m, "h")
	if m.state != stateQuit {
		t.Fatalf("state = %v, want quit", m.state)
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.Quit")
	}
}

func TestOpenFileWithoutOpener(t *testing.T) {
	root := setupTree(t)
	m := createTestModel(t, root, config.Config{})
	m, cmd := press(t, m, "G", "enter")
	if cmd != nil {
		t.Fatal("expected no command without an opener")
	}
	if m.CurrentPath() != root {
		t.Fatal("opening a file must not change directory")
	}
	if !strings.Contains(m.statusMsg, "No opener configured") {
		t.Fatalf("status = %q", m.statusMsg)
	}
}

func TestOpenFileWithOpener(t *testing.T) {
	m := createTestModel(t, setupTree(t), config.Config{Opener: "true"})
	_, cmd := press(t, m, "G", "enter")
	if cmd == nil {
		t.Fatal("expected an exec command")
	}
}

func TestToggleHidden(t *testing.T) {
	m := createTestModel(t, setupTree(t), config.Config{})
	m, _ = press(t, m, ".")
	want := []string{"alpha", "beta", ".hidden", "notes.txt", "readme.md"}
	if got := visibleNames(m); !reflect.DeepEqual(got, want) {
		t.Fatalf("visible = %v, want %v", got, want)
	}
	m, _ = press(t, m, ".")
	if m.itemsLen() != 4 {
		t.Fatalf("hidden entries still shown: %v", visibleNames(m))
	}
}

func TestFilterNarrowsListing(t *testing.T) {
	m := createTestModel(t, setupTree(t), config.Config{})
	m, _ = press(t, m, "f", "R", "E", "A")
	if !m.filter.filtering {
		t.Fatal("expected filter input to be active")
	}
	if got := visibleNames(m); !reflect.DeepEqual(got, []string{"readme.md"}) {
		t.Fatalf("visible = %v", got)
	}

	m, _ = press(t, m, "enter")
	if m.filter.filtering || m.filter.query != "REA" {
		t.Fatalf("filter not kept: %+v", m.filter.query)
	}
	// keys act on the listing again
	m, _ = press(t, m, "F")
	if m.itemsLen() != 4 {
		t.Fatalf("F did not clear the filter: %v", visibleNames(m))
	}
}

func TestFilterEscClears(t *testing.T) {
	m := createTestModel(t, setupTree(t), config.Config{})
	m, _ = press(t, m, "f", "z", "z", "z", "esc")
	if m.filter.query != "" || m.itemsLen() != 4 {
		t.Fatalf("esc should clear the filter, visible %v", visibleNames(m))
	}
}

func TestRefreshPicksUpExternalChanges(t *testing.T) {
	root := setupTree(t)
	m := createTestModel(t, root, config.Config{})
	mustWrite(t, filepath.Join(root, "new.txt"), "")

	m, _ = press(t, m, "ctrl+r")
	if got := visibleNames(m); !reflect.DeepEqual(got, []string{"alpha", "beta", "new.txt", "notes.txt", "readme.md"}) {
		t.Fatalf("visible = %v", got)
	}
}

func TestDirChangedReloadsOnlyCurrentDirectory(t *testing.T) {
	root := setupTree(t)
	m := createTestModel(t, root, config.Config{})
	mustWrite(t, filepath.Join(root, "late.txt"), "")

	m, _ = update(t, m, dirChangedMsg{dir: filepath.Join(root, "alpha")})
	if m.itemsLen() != 4 {
		t.Fatal("event for another directory must not reload")
	}
	m, _ = update(t, m, dirChangedMsg{dir: root})
	if m.itemsLen() != 5 {
		t.Fatalf("expected reload, visible %v", visibleNames(m))
	}
}

func TestCursorFollowsEntryAcrossReload(t *testing.T) {
	root := setupTree(t)
	m := createTestModel(t, root, config.Config{})
	m, _ = press(t, m, "G") // readme.md
	mustWrite(t, filepath.Join(root, "aaa.txt"), "")

	m, _ = update(t, m, dirChangedMsg{dir: root})
	if e, _ := m.selected(); e.Name != "readme.md" {
		t.Fatalf("cursor on %q, want readme.md", e.Name)
	}
}

func TestQuit(t *testing.T) {
	m := createTestModel(t, setupTree(t), config.Config{})
	m, cmd := press(t, m, "q")
	if m.state != stateQuit {
		t.Fatalf("state = %v, want quit", m.state)
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.Quit")
	}
	if m.View() != "" {
		t.Fatal("view should be empty after quit")
	}
}
