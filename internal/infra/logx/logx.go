// Package logx writes leveled JSON lines. Output is discarded until
// SetOutput is called, since the terminal belongs to the UI.
package logx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return levelNames[LevelDebug]
	}
	return levelNames[l]
}

// ParseLevel maps a level name to a Level. Matching is case-insensitive and
// an empty name means info.
func ParseLevel(s string) (Level, error) {
	switch name := strings.ToLower(strings.TrimSpace(s)); name {
	case "":
		return LevelInfo, nil
	case "warning":
		return LevelWarn, nil
	default:
		for i, n := range levelNames {
			if n == name {
				return Level(i), nil
			}
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Fields carries structured context for a log line.
type Fields map[string]any

// maxLen bounds messages and string fields unless verbose.
const maxLen = 2 * 1024

var (
	mu       sync.RWMutex
	minLevel           = LevelWarn
	out      io.Writer = io.Discard
	home     string
	verbose  bool
)

// SetOutput sets the destination for logs. A nil writer discards them.
func SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	mu.Lock()
	out = w
	mu.Unlock()
}

func SetMinLevel(l Level) { mu.Lock(); minLevel = l; mu.Unlock() }

// SetVerbose turns off truncation.
func SetVerbose(v bool) { mu.Lock(); verbose = v; mu.Unlock() }

// SetHome makes paths below dir appear as "~/..." in messages and string
// fields. An empty dir disables the rewrite.
func SetHome(dir string) {
	if dir != "" {
		dir = filepath.Clean(dir)
	}
	mu.Lock()
	home = dir
	mu.Unlock()
}

// StdlogWriter turns every line written to it into a log entry at level.
// Pass it to log.SetOutput to capture the standard logger and libraries
// that use it.
func StdlogWriter(level Level, w io.Writer) io.Writer {
	if w == nil {
		w = os.Stderr
	}
	return &stdlogWriter{level: level, w: w}
}

type stdlogWriter struct {
	level Level
	w     io.Writer
}

func (sw *stdlogWriter) Write(p []byte) (int, error) {
	n := 0
	for line := range bytes.SplitSeq(p, []byte("\n")) {
		if len(line) > 0 {
			if err := emit(sw.w, sw.level, string(line), nil); err != nil {
				return n, err
			}
		}
		n += len(line) + 1
	}
	return len(p), nil
}

func Debugf(format string, args ...any) { logf(LevelDebug, format, args) }
func Warnf(format string, args ...any)  { logf(LevelWarn, format, args) }

// Infow, Warnw and Errorw attach fields to msg. The map is copied, callers
// may keep using it.
func Infow(msg string, f Fields)  { _ = emit(output(), LevelInfo, msg, f) }
func Warnw(msg string, f Fields)  { _ = emit(output(), LevelWarn, msg, f) }
func Errorw(msg string, f Fields) { _ = emit(output(), LevelError, msg, f) }

func logf(lvl Level, format string, args []any) {
	_ = emit(output(), lvl, fmt.Sprintf(format, args...), nil)
}

func output() io.Writer { mu.RLock(); defer mu.RUnlock(); return out }

type entry struct {
	TS     string `json:"ts"`
	Level  string `json:"level"`
	Msg    string `json:"msg"`
	Fields Fields `json:"fields,omitempty"`
}

func emit(w io.Writer, lvl Level, msg string, fields Fields) error {
	mu.RLock()
	skip := lvl < minLevel
	clean := cleaner{home: home, limit: maxLen}
	if verbose {
		clean.limit = 0
	}
	mu.RUnlock()
	if skip {
		return nil
	}

	e := entry{
		TS:    time.Now().Format(time.RFC3339Nano),
		Level: lvl.String(),
		Msg:   clean.text(msg),
	}
	if len(fields) > 0 {
		e.Fields = make(Fields, len(fields))
		for k, v := range fields {
			if s, ok := v.(string); ok {
				v = clean.text(s)
			}
			e.Fields[k] = v
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		// a field json cannot encode; keep the message
		_, err = io.WriteString(w, e.Msg+"\n")
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	_, err = w.Write(append(b, '\n'))
	return err
}

// cleaner rewrites text for output: home shortened, length capped.
type cleaner struct {
	home  string
	limit int // 0 disables the cap
}

func (c cleaner) text(s string) string {
	return truncate(shorten(s, c.home), c.limit)
}

// shorten replaces occurrences of the home directory with "~". Only whole
// path prefixes are rewritten: "/home/ann" does not touch "/home/anna".
func shorten(s, h string) string {
	if h == "" || h == string(filepath.Separator) {
		return s
	}
	var b strings.Builder
	for {
		i := strings.Index(s, h)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := i + len(h)
		b.WriteString(s[:i])
		if end == len(s) || strings.IndexByte(string(filepath.Separator)+` "':,)`, s[end]) >= 0 {
			b.WriteString("~")
		} else {
			b.WriteString(h)
		}
		s = s[end:]
	}
}

// truncate caps s at limit bytes, keeping the last few bytes after a marker.
func truncate(s string, limit int) string {
	const marker, keep = "… [truncated]", 10
	switch {
	case limit <= 0 || len(s) <= limit:
		return s
	case limit <= len(marker)+keep:
		return s[:limit]
	}
	return s[:limit-len(marker)-keep] + marker + s[len(s)-keep:]
}
