package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/ff/v3"

	"filemanager/internal/infra/logx"
)

// Root boundary policies. With PolicyStay navigating up at the root does
// nothing; with PolicyExit it leaves the program.
const (
	PolicyStay = "stay"
	PolicyExit = "exit"
)

const fileName = ".fmrc"

// envPrefix names the environment overrides: -root-policy is FM_ROOT_POLICY.
const envPrefix = "FM"

const lastPathKey = "LAST_PATH"

// Config holds the settings read from flags, the environment and the rc file.
type Config struct {
	Root       string
	RootPolicy string
	ShowHidden bool
	Opener     string
	LogFile    string
	LogLevel   string
	Watch      bool
	Restore    bool
	LastPath   string
	ReportPath string

	// Start is the directory to open; empty means last session or root.
	Start string

	// Path is the rc file the config was loaded from.
	Path string
}

// Default returns the settings used when no source sets a key.
func Default() Config {
	root, err := os.UserHomeDir()
	if err != nil {
		root = string(filepath.Separator)
	}
	return Config{
		Root:       root,
		RootPolicy: PolicyStay,
		LogLevel:   "info",
		Watch:      true,
		Restore:    true,
		Path:       DefaultPath(),
	}
}

// DefaultPath returns the rc file location in the user's home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return fileName
	}
	return filepath.Join(home, fileName)
}

// Load parses command line args (without the program name), FM_* environment
// variables and the rc file named by -config. Flags win over the
// environment, the environment over the file. A missing rc file is not an
// error.
func Load(args []string) (Config, error) {
	cfg := Default()
	fset := flag.NewFlagSet("filemanager", flag.ContinueOnError)
	cfg.register(fset)

	err := ff.Parse(fset, args,
		ff.WithEnvVarPrefix(envPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(parseRC),
		ff.WithAllowMissingConfigFile(true),
		ff.WithIgnoreUndefined(true),
	)
	if err != nil {
		return cfg, err
	}

	cfg.RootPolicy = strings.ToLower(cfg.RootPolicy)
	cfg.Root = ExpandHome(cfg.Root)
	cfg.LastPath = ExpandHome(cfg.LastPath)
	cfg.Start = ExpandHome(cfg.Start)
	return cfg, cfg.Validate()
}

func (c *Config) register(fset *flag.FlagSet) {
	fset.StringVar(&c.Path, "config", c.Path, "rc file with KEY=VALUE lines")
	fset.StringVar(&c.Root, "root", c.Root, "directory NavigateUp never leaves")
	fset.StringVar(&c.RootPolicy, "root-policy", c.RootPolicy, "at the root, going up does nothing (stay) or quits (exit)")
	fset.Var((*switchValue)(&c.ShowHidden), "show-hidden", "list dot files")
	fset.StringVar(&c.Opener, "opener", c.Opener, "command that opens files, the path is appended")
	fset.StringVar(&c.LogFile, "log-file", c.LogFile, "write logs to this file")
	fset.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
	fset.Var((*switchValue)(&c.Watch), "watch", "refresh the listing when the directory changes")
	fset.Var((*switchValue)(&c.Restore), "restore", "reopen the last session's directory")
	fset.StringVar(&c.LastPath, "last-path", c.LastPath, "directory of the last session")
	fset.StringVar(&c.ReportPath, "report", c.ReportPath, "write the operation report here on exit")
	fset.StringVar(&c.Start, "start", c.Start, "directory to open (default: last session, else root)")
}

// Validate rejects values the program cannot act on.
func (c Config) Validate() error {
	switch c.RootPolicy {
	case PolicyStay, PolicyExit:
	default:
		return fmt.Errorf("config: unknown ROOT_POLICY %q (want %s or %s)", c.RootPolicy, PolicyStay, PolicyExit)
	}
	if _, err := logx.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SaveLastPath records dir as LAST_PATH in the rc file at path. Every other
// line is written back as it was read.
func SaveLastPath(path, dir string) error {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read %s: %w", path, err)
	}

	entry := lastPathKey + "=" + dir
	var out []string
	replaced := false
	for _, line := range strings.Split(strings.TrimSuffix(string(data), "\n"), "\n") {
		if k, _, ok := strings.Cut(line, "="); ok && rcKey(k) == "last-path" {
			if !replaced {
				out = append(out, entry)
				replaced = true
			}
			continue
		}
		out = append(out, line)
	}
	if !replaced {
		out = append(out, entry)
	}
	if len(data) == 0 {
		out = out[1:] // drop the empty line Split returns for an empty file
	}

	if err := os.WriteFile(path, []byte(strings.Join(out, "\n")+"\n"), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logx.Debugf("last path %s saved to %s", dir, path)
	return nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// parseRC reads KEY=VALUE lines. ROOT_POLICY sets the -root-policy flag.
func parseRC(r io.Reader, set func(name, value string) error) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		k, v, ok := strings.Cut(text, "=")
		if !ok {
			return fmt.Errorf("line %d: expected KEY=VALUE", line)
		}
		if err := set(rcKey(k), strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return sc.Err()
}

func rcKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(k)), "_", "-")
}

// switchValue is a bool flag that also takes yes/no and on/off.
type switchValue bool

func (s *switchValue) String() string {
	if s == nil {
		return "false"
	}
	return fmt.Sprint(bool(*s))
}

func (s *switchValue) Set(v string) error {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on", "enable", "enabled":
		*s = true
	case "0", "false", "no", "off", "disable", "disabled":
		*s = false
	default:
		return fmt.Errorf("invalid boolean %q", v)
	}
	return nil
}

func (s *switchValue) IsBoolFlag() bool { return true }
