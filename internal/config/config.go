// Package config loads the panel configuration from a YAML file, falling
// back to defaults when the file is absent.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config defines the panel configuration.
type Config struct {
	// HostURL is the websocket endpoint of the host message transport.
	HostURL string `yaml:"host_url"`
	// DefaultMode is the ambient execution mode for tasks that carry none.
	DefaultMode string `yaml:"default_mode"`
	// SettingsPath is the SQLite file holding persisted view state.
	SettingsPath string `yaml:"settings_path"`
	// StubAddr is the listen address for the development host daemon.
	StubAddr string `yaml:"stub_addr"`
	// StubDBPath is the SQLite file the development host persists tasks in.
	StubDBPath string `yaml:"stub_db_path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	base := BasePath()
	return &Config{
		HostURL:      "ws://127.0.0.1:7467/ws",
		DefaultMode:  "code",
		SettingsPath: filepath.Join(base, "settings.db"),
		StubAddr:     "127.0.0.1:7467",
		StubDBPath:   filepath.Join(base, "hostd.db"),
	}
}

// BasePath returns the taskdock data directory.
func BasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskdock"
	}
	return filepath.Join(home, ".taskdock")
}

// Load reads the config file at path. A missing file is not an error; the
// defaults apply. Fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
