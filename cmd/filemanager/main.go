package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"filemanager/internal/config"
	"filemanager/internal/core/browser"
	"filemanager/internal/infra/logx"
	"filemanager/internal/ui"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
	defer closeLog()

	b, err := openBrowser(cfg)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}

	final, err := tea.NewProgram(
		ui.NewModel(b, cfg),
		tea.WithAltScreen(),
	).Run()
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}

	m, ok := final.(ui.Model)
	if !ok {
		return
	}
	m.Close()
	finish(cfg, m)
}

// setupLogging routes logx (and the standard logger) to LOG_FILE, or to
// debug.log when DEBUG is set. Without either, logs are discarded since the
// TUI owns the terminal.
func setupLogging(cfg config.Config) (func(), error) {
	lvl, err := logx.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if home, err := os.UserHomeDir(); err == nil {
		logx.SetHome(home)
	}

	path := config.ExpandHome(cfg.LogFile)
	if path == "" && len(os.Getenv("DEBUG")) > 0 {
		path = "debug.log"
		lvl = logx.LevelDebug
		logx.SetVerbose(true)
	}
	if path == "" {
		return func() {}, nil
	}

	// tea.LogToFile also points the standard logger at the file
	f, err := tea.LogToFile(path, "filemanager")
	if err != nil {
		return nil, err
	}
	log.SetOutput(logx.StdlogWriter(logx.LevelDebug, f))
	logx.SetOutput(f)
	logx.SetMinLevel(lvl)
	fmt.Printf("Logging to %s. Run 'tail -f %s' to follow.\n", path, path)
	return func() { f.Close() }, nil
}

// openBrowser picks the start directory: -start, else the last session's
// directory when restore is enabled, else the root. A remembered directory
// that is gone or outside the root is ignored.
func openBrowser(cfg config.Config) (*browser.Browser, error) {
	if cfg.Start != "" {
		return browser.New(cfg.Root, cfg.Start)
	}
	if cfg.Restore && cfg.LastPath != "" {
		b, err := browser.New(cfg.Root, cfg.LastPath)
		if err == nil {
			return b, nil
		}
		logx.Infow("last path not restored", logx.Fields{"path": cfg.LastPath, "error": err.Error()})
	}
	return browser.New(cfg.Root, "")
}

// finish records the session directory in the rc file and writes the
// operation report.
func finish(cfg config.Config, m ui.Model) {
	if cfg.Restore && cfg.Path != "" {
		if err := config.SaveLastPath(cfg.Path, m.CurrentPath()); err != nil {
			logx.Warnf("save session: %v", err)
		}
	}
	if cfg.ReportPath != "" {
		if err := m.Report().Dump(config.ExpandHome(cfg.ReportPath)); err != nil {
			fmt.Println("error writing report:", err)
			return
		}
		s, w, f := m.Report().Counts()
		fmt.Printf("Report written to %s (%d ok, %d partial, %d failed)\n", cfg.ReportPath, s, w, f)
	}
}
