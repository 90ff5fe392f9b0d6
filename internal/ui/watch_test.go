package ui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func waitMsg(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report a change")
		return nil
	}
}

func TestDirWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := newDirWatcher(dir)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer w.Close()

	cmd := w.next()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	msg, ok := waitMsg(t, cmd).(dirChangedMsg)
	if !ok || msg.dir != dir {
		t.Fatalf("got %#v, want dirChangedMsg for %s", msg, dir)
	}
}

func TestDirWatcherSwitch(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	w, err := newDirWatcher(first)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer w.Close()

	w.Switch(second)
	if w.current() != second {
		t.Fatalf("current = %q, want %q", w.current(), second)
	}
	if err := os.WriteFile(filepath.Join(second, "b.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	msg, ok := waitMsg(t, w.next()).(dirChangedMsg)
	if !ok || msg.dir != second {
		t.Fatalf("got %#v, want dirChangedMsg for %s", msg, second)
	}

	w.Switch(filepath.Join(second, "missing"))
	if w.current() != "" {
		t.Fatalf("watching a missing directory should leave the watcher idle, got %q", w.current())
	}
}

func TestDirWatcherClosed(t *testing.T) {
	w, err := newDirWatcher(t.TempDir())
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	cmd := w.next()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if msg := waitMsg(t, cmd); msg != nil {
		t.Fatalf("closed watcher returned %#v", msg)
	}
}
