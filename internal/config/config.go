package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file is absent or a field is unset.
const (
	DefaultQuietPeriodMs = 200
	DefaultPageSize      = 50
)

// Config holds CLI configuration stored at ~/.tagdex/config.
type Config struct {
	Server        string `yaml:"server,omitempty"`
	QuietPeriodMs int    `yaml:"quiet_period_ms,omitempty"`
	PageSize      int    `yaml:"page_size,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		QuietPeriodMs: DefaultQuietPeriodMs,
		PageSize:      DefaultPageSize,
	}
}

// QuietPeriod returns the autocomplete debounce window.
func (c *Config) QuietPeriod() time.Duration {
	if c.QuietPeriodMs <= 0 {
		return DefaultQuietPeriodMs * time.Millisecond
	}
	return time.Duration(c.QuietPeriodMs) * time.Millisecond
}

// Page returns the listing page size.
func (c *Config) Page() int {
	if c.PageSize <= 0 {
		return DefaultPageSize
	}
	return c.PageSize
}

// Path returns the config file path.
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".tagdex", "config")
}

// Load reads and parses the config file. Returns error if missing or insecure.
func Load() (*Config, error) {
	path := Path()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config not found: %w", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		return nil, fmt.Errorf("config permissions too open: %04o (want 0600)", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.QuietPeriodMs < 0 {
		return nil, fmt.Errorf("config quiet_period_ms must not be negative")
	}
	if cfg.PageSize < 0 {
		return nil, fmt.Errorf("config page_size must not be negative")
	}

	return &cfg, nil
}

// Save writes the config to disk with secure permissions.
func (c *Config) Save() error {
	path := Path()
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}
