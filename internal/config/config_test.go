package config_test

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thomasrohde/tammr/internal/config"
	"github.com/thomasrohde/tammr/pkg/diagnostics"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	if cfg.Prompt != ">> " || cfg.MaxCallDepth != 10000 || !cfg.Pretty || cfg.LogLevel != slog.LevelWarn {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoad(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeFile(t, t.TempDir(), "c.yaml", `
prompt: "tammr> "
history_file: ~/.hist
log_level: debug
max_call_depth: 42
pretty: false
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Prompt != "tammr> " {
		t.Errorf("prompt: got %q", cfg.Prompt)
	}
	if cfg.HistoryFile != filepath.Join(home, ".hist") {
		t.Errorf("history_file: got %q", cfg.HistoryFile)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("log_level: got %v", cfg.LogLevel)
	}
	if cfg.MaxCallDepth != 42 || cfg.Pretty {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Path != path {
		t.Errorf("path: got %q", cfg.Path)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "c.yaml", "pretty: false\n")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Prompt != config.DefaultPrompt || cfg.MaxCallDepth != config.DefaultMaxCallDepth || cfg.Pretty {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "c.yaml", "")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Prompt != config.DefaultPrompt {
		t.Errorf("got prompt %q", cfg.Prompt)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "colour: blue\n", "field colour not found"},
		{"bad level", "log_level: loud\n", `invalid log_level "loud"`},
		{"bad depth", "max_call_depth: 0\n", "max_call_depth must be positive"},
		{"bad yaml", "prompt: [\n", "yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "c.yaml", tt.content)
			_, err := config.Load(path)
			var cErr *config.Error
			if !errors.As(err, &cErr) {
				t.Fatalf("expected *config.Error, got %T: %v", err, err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.want)
			}
			if cErr.Diagnostic().Code != diagnostics.EConfig {
				t.Errorf("got code %s", cErr.Diagnostic().Code)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestDiscoverPrecedence(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	project := t.TempDir()

	cfg, err := config.Discover(project)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path != "" {
		t.Errorf("expected defaults, got config from %s", cfg.Path)
	}

	userPath := writeFile(t, home, ".tammr/config.yaml", "prompt: \"user> \"\n")
	cfg, err = config.Discover(project)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path != userPath || cfg.Prompt != "user> " {
		t.Errorf("expected user config, got %+v", cfg)
	}

	projectPath := writeFile(t, project, config.ProjectFile, "prompt: \"project> \"\n")
	cfg, err = config.Discover(project)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path != projectPath || cfg.Prompt != "project> " {
		t.Errorf("expected project config, got %+v", cfg)
	}
}

func TestDiscoverReportsInvalidFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	writeFile(t, project, config.ProjectFile, "nope: 1\n")
	if _, err := config.Discover(project); err == nil {
		t.Error("expected error for invalid project config")
	}
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"debug": slog.LevelDebug, "INFO": slog.LevelInfo, " warn ": slog.LevelWarn, "error": slog.LevelError,
	} {
		got, err := config.ParseLevel(name)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := config.ParseLevel("trace"); err == nil {
		t.Error("expected error for trace")
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandHome("~/x/y")
	if err != nil || got != filepath.Join(home, "x/y") {
		t.Errorf("got %q, %v", got, err)
	}
	if got, _ := config.ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("got %q", got)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected log output %q", buf.String())
	}
}
