// Package config holds quantmind configuration: where the storage engine
// keeps its data, how long artifact downloads may take, and how logging
// behaves. Configuration is loaded from a YAML file with environment
// variable overrides; missing files fall back to defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all quantmind configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig configures the local storage engine.
type StorageConfig struct {
	// BaseDir is the root under which the category directories live.
	BaseDir string `yaml:"base_dir"`

	// DownloadTimeout bounds artifact fetches during knowledge processing.
	DownloadTimeout string `yaml:"download_timeout"`

	// WatchTampering starts the fsnotify watcher that evicts index entries
	// when files are removed out-of-band.
	WatchTampering bool `yaml:"watch_tampering"`

	// ProcessWorkers bounds the worker pool used by batch knowledge
	// processing. Zero means one worker per CPU.
	ProcessWorkers int `yaml:"process_workers"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty = stderr
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			BaseDir:         "./data",
			DownloadTimeout: "30s",
			WatchTampering:  false,
			ProcessWorkers:  0,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults;
// environment variables override either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("QUANTMIND_STORAGE_DIR"); dir != "" {
		c.Storage.BaseDir = dir
	}
	if t := os.Getenv("QUANTMIND_DOWNLOAD_TIMEOUT"); t != "" {
		c.Storage.DownloadTimeout = t
	}
	if lvl := os.Getenv("QUANTMIND_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
	if w := os.Getenv("QUANTMIND_PROCESS_WORKERS"); w != "" {
		if n, err := strconv.Atoi(w); err == nil {
			c.Storage.ProcessWorkers = n
		}
	}
}

// GetDownloadTimeout parses the download timeout, defaulting to 30s.
func (c *Config) GetDownloadTimeout() time.Duration {
	d, err := time.ParseDuration(c.Storage.DownloadTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage.base_dir must not be empty")
	}
	if c.Storage.DownloadTimeout != "" {
		if _, err := time.ParseDuration(c.Storage.DownloadTimeout); err != nil {
			return fmt.Errorf("storage.download_timeout invalid: %w", err)
		}
	}
	if c.Storage.ProcessWorkers < 0 {
		return fmt.Errorf("storage.process_workers must not be negative")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level invalid: %q", c.Logging.Level)
	}
	return nil
}
