// Package config loads the optional YAML settings file for the xen CLI.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable consulted when no --config flag is given.
const EnvVar = "XEN_CONFIG"

// DefaultFileName is looked up in the user's home directory.
const DefaultFileName = ".xen.yml"

// Config is the resolved CLI configuration.
type Config struct {
	// Path is the file the configuration was read from, or "" for defaults.
	Path string
	REPL REPL
	Log  Log
}

// REPL holds interactive-session settings.
type REPL struct {
	Prompt          string `yaml:"prompt"`
	HistoryFile     string `yaml:"history_file"`
	Color           bool   `yaml:"color"`
	EchoAssignments bool   `yaml:"echo_assignments"`
}

// Log holds driver logging settings.
type Log struct {
	Level string `yaml:"level"`
}

type configFile struct {
	REPL *replFile `yaml:"repl"`
	Log  *Log      `yaml:"log"`
}

// replFile uses pointers so an explicit false can be told apart from unset.
type replFile struct {
	Prompt          *string `yaml:"prompt"`
	HistoryFile     *string `yaml:"history_file"`
	Color           *bool   `yaml:"color"`
	EchoAssignments *bool   `yaml:"echo_assignments"`
}

// ValidationError aggregates configuration problems.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("config: ")
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString("validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Default returns the built-in configuration.
func Default() *Config {
	history := ""
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, ".xen_history")
	}
	return &Config{
		REPL: REPL{
			Prompt:      "xen> ",
			HistoryFile: history,
			Color:       true,
		},
		Log: Log{Level: "info"},
	}
}

// Resolve picks the configuration file to load: the explicit path if set,
// then $XEN_CONFIG, then ~/.xen.yml. The boolean reports whether the file is
// required to exist; only the home-directory default is optional.
func Resolve(explicit string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	if env := os.Getenv(EnvVar); env != "" {
		return env, true
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(home, DefaultFileName), false
}

// Load resolves and reads the configuration. A missing optional default file
// yields Default().
func Load(explicit string) (*Config, error) {
	path, required := Resolve(explicit)
	if path == "" {
		return Default(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	cfg, err := Parse(file)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Path = path
			return nil, verr
		}
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes YAML from r on top of Default() and validates the result.
// Unknown keys are rejected. An empty document yields the defaults.
func Parse(r io.Reader) (*Config, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	cfg := Default()
	raw.apply(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *configFile) apply(cfg *Config) {
	if r := f.REPL; r != nil {
		if r.Prompt != nil {
			cfg.REPL.Prompt = *r.Prompt
		}
		if r.HistoryFile != nil {
			cfg.REPL.HistoryFile = expandHome(*r.HistoryFile)
		}
		if r.Color != nil {
			cfg.REPL.Color = *r.Color
		}
		if r.EchoAssignments != nil {
			cfg.REPL.EchoAssignments = *r.EchoAssignments
		}
	}
	if f.Log != nil && f.Log.Level != "" {
		cfg.Log.Level = strings.ToLower(f.Log.Level)
	}
}

func (c *Config) validate() error {
	var errs ValidationError
	if c.REPL.Prompt == "" {
		errs.Issues = append(errs.Issues, "repl.prompt must not be empty")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs.Issues = append(errs.Issues, err.Error())
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// SlogLevel returns the configured log level. verbose forces Debug.
func (c *Config) SlogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level %q is not one of debug, info, warn, error", s)
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
