package ui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"filemanager/internal/infra/logx"
)

// settle is how long the watcher waits for a burst of events to end before
// asking for a re-list.
const settle = 150 * time.Millisecond

// dirChangedMsg asks the model to re-list dir.
type dirChangedMsg struct {
	dir string
}

// watchErrMsg reports a watcher failure. The listing still works; it just
// stops refreshing on its own.
type watchErrMsg struct {
	err error
}

// dirWatcher follows a single directory, the one being browsed.
type dirWatcher struct {
	w *fsnotify.Watcher

	mu  sync.Mutex
	dir string
}

func newDirWatcher(dir string) (*dirWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	return &dirWatcher{w: w, dir: dir}, nil
}

// Switch moves the watch to dir. Failing to watch the new directory is
// logged and leaves the watcher idle until the next Switch.
func (d *dirWatcher) Switch(dir string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dir == dir {
		return
	}
	if d.dir != "" {
		if err := d.w.Remove(d.dir); err != nil {
			logx.Debugf("unwatch %s: %v", d.dir, err)
		}
	}
	d.dir = ""
	if err := d.w.Add(dir); err != nil {
		logx.Warnf("watch %s: %v", dir, err)
		return
	}
	d.dir = dir
}

func (d *dirWatcher) current() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dir
}

func (d *dirWatcher) Close() error { return d.w.Close() }

// next blocks until the watched directory changes, lets the burst settle and
// reports it once. The model re-issues next after handling the message.
func (d *dirWatcher) next() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-d.w.Events:
				if !ok {
					return nil
				}
				// attribute-only changes do not alter the listing
				if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
					continue
				}
				if !d.drain(settle) {
					return nil
				}
				return dirChangedMsg{dir: d.current()}
			case err, ok := <-d.w.Errors:
				if !ok {
					return nil
				}
				return watchErrMsg{err: err}
			}
		}
	}
}

// drain swallows events until none arrive for quiet. It reports false when
// the watcher was closed meanwhile.
func (d *dirWatcher) drain(quiet time.Duration) bool {
	t := time.NewTimer(quiet)
	defer t.Stop()
	for {
		select {
		case _, ok := <-d.w.Events:
			if !ok {
				return false
			}
			t.Reset(quiet)
		case <-t.C:
			return true
		}
	}
}
