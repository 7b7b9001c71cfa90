package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope", "config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorePath != DefaultStorePath() {
		t.Errorf("StorePath = %q, want default", cfg.StorePath)
	}
	if cfg.OpTimeout != 0 {
		t.Errorf("OpTimeout = %v, want 0", cfg.OpTimeout)
	}
	if cfg.AllowArchivedProjectTasks {
		t.Error("AllowArchivedProjectTasks defaulted to true")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `store_path: /tmp/elsewhere/tasks.db
op_timeout: 2s
allow_archived_project_tasks: true
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorePath != "/tmp/elsewhere/tasks.db" {
		t.Errorf("StorePath = %q", cfg.StorePath)
	}
	if cfg.OpTimeout != 2*time.Second {
		t.Errorf("OpTimeout = %v, want 2s", cfg.OpTimeout)
	}
	if !cfg.AllowArchivedProjectTasks {
		t.Error("AllowArchivedProjectTasks not read")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadPartialFileKeepsRemainingDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: warn\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.StorePath != DefaultStorePath() {
		t.Errorf("StorePath = %q, want default", cfg.StorePath)
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("store_path: [unclosed\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted malformed YAML")
	}
}
