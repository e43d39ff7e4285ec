// ABOUTME: Configuration loading and saving, stored as JSON under XDG paths.
// ABOUTME: Explicit values threaded into the engine; no ambient globals.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harperreed/healthimport/internal/storage"
)

// Config holds the persisted settings.
type Config struct {
	// DBPath overrides the default database location when set.
	DBPath string `json:"db_path,omitempty"`

	// GarminToken is the Garmin Connect API bearer token.
	GarminToken string `json:"garmin_token,omitempty"`

	// GarminCacheDir overrides where API responses are cached.
	GarminCacheDir string `json:"garmin_cache_dir,omitempty"`
}

// ConfigDir returns the config directory following the XDG spec.
func ConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "healthimport")
}

func configPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// Load reads the config file, returning defaults when it does not exist.
func Load() (*Config, error) {
	return LoadFrom(configPath())
}

// LoadFrom reads a config file from an explicit path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config file, creating the directory as needed.
func (c *Config) Save() error {
	return c.SaveTo(configPath())
}

// SaveTo writes the config to an explicit path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	// Token lives in here, keep it owner-readable.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ResolveDBPath picks the database path: explicit flag, then config,
// then the XDG default.
func (c *Config) ResolveDBPath(flag string) string {
	if flag != "" {
		return flag
	}
	if c.DBPath != "" {
		return c.DBPath
	}
	return storage.DefaultDBPath()
}

// ResolveCacheDir picks the Garmin response cache directory.
func (c *Config) ResolveCacheDir() string {
	if c.GarminCacheDir != "" {
		return c.GarminCacheDir
	}
	return filepath.Join(storage.DataDir(), "garmin-cache")
}
