package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsUsable(t *testing.T) {
	cfg := Default()
	if cfg.Host == "" {
		t.Fatalf("expected a default host")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		t.Fatalf("expected positive default dimensions, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestLoadWithoutFileReturnsDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Host != Default().Host {
		t.Fatalf("expected default host, got %q", cfg.Host)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Width = 1920
	cfg.Height = 1080
	if err := cfg.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Width != 1920 || loaded.Height != 1080 {
		t.Fatalf("got %dx%d, want 1920x1080", loaded.Width, loaded.Height)
	}
}

func TestSaveWritesExpectedPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg := Default()
	if err := cfg.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	path := filepath.Join(dir, "pixelpwnr-server", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var disk Config
	if err := json.Unmarshal(data, &disk); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if disk.Host != cfg.Host {
		t.Fatalf("got host %q, want %q", disk.Host, cfg.Host)
	}
}
