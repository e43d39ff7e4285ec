// ABOUTME: Tests for config load/save round trips and path resolution.
package config

import (
	"path/filepath"
	"testing"

	"github.com/harperreed/healthimport/internal/storage"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.DBPath != "" || cfg.GarminToken != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")

	cfg := &Config{
		DBPath:      "/tmp/health.db",
		GarminToken: "abc123",
	}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.DBPath != cfg.DBPath || loaded.GarminToken != cfg.GarminToken {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestResolveDBPath(t *testing.T) {
	cfg := &Config{DBPath: "/configured/health.db"}

	if got := cfg.ResolveDBPath("/flag/health.db"); got != "/flag/health.db" {
		t.Errorf("flag should win, got %s", got)
	}
	if got := cfg.ResolveDBPath(""); got != "/configured/health.db" {
		t.Errorf("config should win over default, got %s", got)
	}
	if got := (&Config{}).ResolveDBPath(""); got != storage.DefaultDBPath() {
		t.Errorf("expected XDG default, got %s", got)
	}
}
