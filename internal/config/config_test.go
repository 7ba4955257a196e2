package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	cfg, err := Load(projectDir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", cfg.Project.Version)
	}
	if cfg.Extension() != ".pmfx" {
		t.Fatalf("expected default extension .pmfx, got %q", cfg.Extension())
	}
	if !cfg.Project.Readme {
		t.Fatalf("expected readme enabled by default")
	}
	want := filepath.Join(projectDir, Dir, "logs", "pmfx.log")
	if cfg.LogFile() != want {
		t.Fatalf("log file = %q, want %q", cfg.LogFile(), want)
	}
}

func TestInitWritesParsableDefaults(t *testing.T) {
	projectDir := t.TempDir()
	if err := Init(projectDir); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(projectDir, Dir, "logs")); err != nil {
		t.Fatalf("logs dir missing: %v", err)
	}
	cfg, err := Load(projectDir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Project != defaultProjectConfig() {
		t.Fatalf("default yaml and default struct disagree: %+v", cfg.Project)
	}

	// Init must not overwrite an edited config.
	if err := os.WriteFile(cfg.ConfigPath(), []byte("profile: pmf\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Init(projectDir); err != nil {
		t.Fatalf("second Init returned error: %v", err)
	}
	data, err := os.ReadFile(cfg.ConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "profile: pmf\n" {
		t.Fatalf("config overwritten: %q", data)
	}
}

func TestLoadParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	stateDir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
profile: .FSKX
readme: false
log:
  level: Warning
  file: ""
history:
  file: /var/tmp/pmfx-history.log
  tail: 5
`)
	if err := os.WriteFile(filepath.Join(stateDir, "config.yaml"), []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(projectDir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Extension() != ".fskx" {
		t.Fatalf("extension = %q, want .fskx", cfg.Extension())
	}
	if cfg.Project.Readme {
		t.Fatalf("expected readme disabled")
	}
	if cfg.Project.Log.Level != "warn" {
		t.Fatalf("log level = %q, want warn", cfg.Project.Log.Level)
	}
	if cfg.LogFile() != "" {
		t.Fatalf("expected file logging disabled, got %q", cfg.LogFile())
	}
	if cfg.HistoryFile() != "/var/tmp/pmfx-history.log" {
		t.Fatalf("history file = %q", cfg.HistoryFile())
	}
	if cfg.Project.History.Tail != 5 {
		t.Fatalf("history tail = %d, want 5", cfg.Project.History.Tail)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	projectDir := t.TempDir()
	stateDir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		t.Fatal(err)
	}
	configYAML := "profile: omex\nlog:\n  level: loud\nhistory:\n  tail: 5000\n"
	if err := os.WriteFile(filepath.Join(stateDir, "config.yaml"), []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(projectDir)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"profile must be one of", "log.level must be one of", "history.tail must be lte"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	projectDir := t.TempDir()
	cfg, err := Load(projectDir)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Project.Profile = "pmf"
	cfg.Project.History.Tail = 7
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	reloaded, err := Load(projectDir)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Project != cfg.Project {
		t.Fatalf("reloaded %+v, want %+v", reloaded.Project, cfg.Project)
	}
}
