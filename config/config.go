// Package config holds the server's startup configuration: values that are
// set once from an optional JSON file and/or CLI flags and never change for
// the lifetime of the process.
package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Config holds the pixelflut server's startup configuration.
type Config struct {
	// Host is the TCP listen address, e.g. ":1234" or "0.0.0.0:1234".
	Host string `json:"host"`
	// Width and Height are the canvas dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`
	// NoBinary disables the "PB" binary command.
	NoBinary bool `json:"noBinary"`
	// IdleTimeout drops a connection that sends nothing for this long. Zero
	// disables idle timeouts.
	IdleTimeout time.Duration `json:"idleTimeout"`
	// StatsInterval is how often the stats reporter samples and logs.
	StatsInterval time.Duration `json:"statsInterval"`
	// BufCap bounds each connection's input and output buffers.
	BufCap int `json:"bufCap"`
	// SnapshotIn, if set, is a PNG file loaded into the canvas at startup.
	SnapshotIn string `json:"snapshotIn"`
	// SnapshotOut, if set, is a PNG file the canvas is written to at
	// shutdown.
	SnapshotOut string `json:"snapshotOut"`
	// StatsDB, if set, is a SQLite database path to append stats history to.
	StatsDB string `json:"statsDb"`
}

// Default returns the server's default configuration.
func Default() *Config {
	return &Config{
		Host:          ":1234",
		Width:         800,
		Height:        600,
		NoBinary:      false,
		IdleTimeout:   0,
		StatsInterval: 5 * time.Second,
		BufCap:        64 * 1024,
	}
}

// Load reads configuration from ~/.config/pixelpwnr-server/config.json,
// falling back to Default if the file does not exist. Command-line flags
// are expected to override whatever Load returns.
func Load() (*Config, error) {
	cfg := Default()

	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Printf("config: could not resolve user config dir: %v", err)
		return cfg, nil
	}

	configPath := filepath.Join(configDir, "pixelpwnr-server", "config.json")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	log.Printf("config: loaded from %s", configPath)
	return cfg, nil
}

// Save writes the configuration to ~/.config/pixelpwnr-server/config.json.
func (c *Config) Save() error {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return err
	}

	dir := filepath.Join(configDir, "pixelpwnr-server")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}
