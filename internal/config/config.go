// Package config loads tammr configuration from YAML files.
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

	"github.com/thomasrohde/tammr/pkg/diagnostics"
)

const (
	// ProjectFile is looked up in the project directory.
	ProjectFile = ".tammr.yaml"
	// DefaultPrompt is the REPL prompt when none is configured.
	DefaultPrompt = ">> "
	// DefaultMaxCallDepth bounds nested function calls when none is configured.
	DefaultMaxCallDepth = 10000
)

// Config holds the settings of one tammr invocation.
type Config struct {
	// Path is the file the settings came from; empty for defaults.
	Path         string
	Prompt       string
	HistoryFile  string
	LogLevel     slog.Level
	MaxCallDepth int
	Pretty       bool
}

// file is the on-disk shape. Pointers distinguish unset keys from zero values.
type file struct {
	Prompt       *string `yaml:"prompt"`
	HistoryFile  *string `yaml:"history_file"`
	LogLevel     *string `yaml:"log_level"`
	MaxCallDepth *int    `yaml:"max_call_depth"`
	Pretty       *bool   `yaml:"pretty"`
}

// Error reports an unreadable or invalid configuration file.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Diagnostic converts the error to an E_CONFIG diagnostic.
func (e *Error) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(diagnostics.EConfig, e.Error(), nil, "")
}

// Default returns the built-in settings.
func Default() *Config {
	cfg := &Config{
		Prompt:       DefaultPrompt,
		LogLevel:     slog.LevelWarn,
		MaxCallDepth: DefaultMaxCallDepth,
		Pretty:       true,
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.HistoryFile = filepath.Join(home, ".tammr_history")
	}
	return cfg
}

// Discover loads configuration for projectDir.
// Precedence: project (.tammr.yaml) → user (~/.tammr/config.yaml) → defaults.
// A file that exists but fails to load is an error rather than skipped.
func Discover(projectDir string) (*Config, error) {
	candidates := []string{filepath.Join(projectDir, ProjectFile)}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".tammr", "config.yaml"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, &Error{Path: path, Err: err}
		}
		return Load(path)
	}
	return Default(), nil
}

// Load reads one configuration file. Keys it does not set keep their defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)

	var raw file
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, &Error{Path: path, Err: err}
	}

	cfg, err := raw.apply(Default())
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	cfg.Path = path
	return cfg, nil
}

func (f *file) apply(cfg *Config) (*Config, error) {
	if f.Prompt != nil {
		cfg.Prompt = *f.Prompt
	}
	if f.HistoryFile != nil {
		path, err := ExpandHome(*f.HistoryFile)
		if err != nil {
			return nil, err
		}
		cfg.HistoryFile = path
	}
	if f.LogLevel != nil {
		level, err := ParseLevel(*f.LogLevel)
		if err != nil {
			return nil, err
		}
		cfg.LogLevel = level
	}
	if f.MaxCallDepth != nil {
		if *f.MaxCallDepth <= 0 {
			return nil, fmt.Errorf("max_call_depth must be positive, got %d", *f.MaxCallDepth)
		}
		cfg.MaxCallDepth = *f.MaxCallDepth
	}
	if f.Pretty != nil {
		cfg.Pretty = *f.Pretty
	}
	return cfg, nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel maps a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	level, ok := levels[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", name)
	}
	return level, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Logger builds the text logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}
