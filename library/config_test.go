package library

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigAbsentFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("absent config should not error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("want defaults, got %+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookkeeper.yaml")
	doc := "name: Branch Library\ndata_dir: /var/lib/bookkeeper\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "Branch Library" || cfg.DataDir != "/var/lib/bookkeeper" {
		t.Fatalf("config mismatch: %+v", cfg)
	}
	// Unset keys fall back to defaults.
	if cfg.LogLevel != DefaultConfig().LogLevel {
		t.Fatalf("want default log level, got %q", cfg.LogLevel)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookkeeper.yaml")
	if err := os.WriteFile(path, []byte("name: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("malformed config should error")
	}
}
