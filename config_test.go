package recstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MaxLoadedPages != DefaultMaxLoadedPages {
		t.Fatalf("MaxLoadedPages = %d, want default %d", cfg.MaxLoadedPages, DefaultMaxLoadedPages)
	}
	if cfg.MaintenanceCron != "" {
		t.Fatalf("MaintenanceCron = %q, want empty (no schedule) by default", cfg.MaintenanceCron)
	}
}

func TestLoadConfigParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := "path: mydata.db\nmax_loaded_pages: 25\nmaintenance_cron: \"@every 5m\"\nlog_instance_tag: false\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Path != "mydata.db" {
		t.Fatalf("Path = %q, want mydata.db", cfg.Path)
	}
	if cfg.MaxLoadedPages != 25 {
		t.Fatalf("MaxLoadedPages = %d, want 25", cfg.MaxLoadedPages)
	}
	if cfg.MaintenanceCron != "@every 5m" {
		t.Fatalf("MaintenanceCron = %q, want '@every 5m'", cfg.MaintenanceCron)
	}
	if cfg.LogInstanceTag {
		t.Fatal("LogInstanceTag = true, want false per config file")
	}
}

func TestLoadConfigZeroMaxLoadedPagesFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zero.yaml")
	if err := os.WriteFile(path, []byte("path: data.db\nmax_loaded_pages: 0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MaxLoadedPages != DefaultMaxLoadedPages {
		t.Fatalf("MaxLoadedPages = %d, want fallback default %d", cfg.MaxLoadedPages, DefaultMaxLoadedPages)
	}
}

func TestLoadConfigInvalidYAMLReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("path: [unterminated"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for malformed YAML, got nil")
	}
}
