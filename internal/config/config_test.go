package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HostURL != DefaultConfig().HostURL {
		t.Errorf("Expected default host URL, got %s", cfg.HostURL)
	}
	if cfg.DefaultMode != "code" {
		t.Errorf("Expected default mode code, got %s", cfg.DefaultMode)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "host_url: ws://localhost:9999/ws\ndefault_mode: plan\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HostURL != "ws://localhost:9999/ws" {
		t.Errorf("Expected overridden host URL, got %s", cfg.HostURL)
	}
	if cfg.DefaultMode != "plan" {
		t.Errorf("Expected overridden mode, got %s", cfg.DefaultMode)
	}
	// Untouched fields keep their defaults.
	if cfg.SettingsPath != DefaultConfig().SettingsPath {
		t.Errorf("Expected default settings path, got %s", cfg.SettingsPath)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("host_url: [unclosed"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed yaml")
	}
}
