package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full deckd configuration.
type Config struct {
	Listen   string `yaml:"listen"`
	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"`

	CanvasWidth  float64 `yaml:"canvas_width"`
	CanvasHeight float64 `yaml:"canvas_height"`

	AutoSave AutoSaveConfig `yaml:"autosave"`
	Storage  StorageConfig  `yaml:"storage"`
	History  HistoryConfig  `yaml:"history"`
}

// AutoSaveConfig configures background persistence.
type AutoSaveConfig struct {
	Interval       time.Duration `yaml:"interval"`
	SaveOnMutation bool          `yaml:"save_on_mutation"`
	Debounce       time.Duration `yaml:"debounce"`
}

// StorageConfig configures the chunked persistence layer.
type StorageConfig struct {
	ChunkSize  int `yaml:"chunk_size"`
	MaxRetries int `yaml:"max_retries"`
}

// HistoryConfig configures undo history.
type HistoryConfig struct {
	Limit            int           `yaml:"limit"`
	MinLimit         int           `yaml:"min_limit"`
	SnapshotInterval time.Duration `yaml:"snapshot_interval"`
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:   ":8086",
		DBPath:   "db/deck.db",
		LogLevel: "info",
		AutoSave: AutoSaveConfig{
			Interval:       30 * time.Second,
			SaveOnMutation: true,
			Debounce:       2 * time.Second,
		},
	}
}

// LoadConfig reads and parses a YAML config file, merged over defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.Storage.ChunkSize < 0 {
		return fmt.Errorf("storage.chunk_size must be >= 0")
	}
	return nil
}
