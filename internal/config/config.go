// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// LevelOff disables logging entirely.
const LevelOff = "off"

// Config holds all contactbook configuration.
type Config struct {
	Storage Storage `yaml:"storage"`
	Export  Export  `yaml:"export"`
	Log     Log     `yaml:"log"`
}

// Storage holds data file settings.
type Storage struct {
	DataFile string `yaml:"data_file"`
}

// Export holds export settings.
type Export struct {
	DefaultFile string `yaml:"default_file"` // Used when the user gives no filename.
}

// Log holds diagnostic logging settings.
type Log struct {
	Level      string `yaml:"level"`       // debug | info | warn | error | off
	File       string `yaml:"file"`        // Rotated JSON log file; empty logs to stderr.
	MaxSizeMB  int    `yaml:"max_size_mb"` // Rotation threshold.
	MaxBackups int    `yaml:"max_backups"` // Rotated files kept.
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: Storage{
			DataFile: "contacts.json",
		},
		Export: Export{
			DefaultFile: "contacts_export.csv",
		},
		Log: Log{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	return LoadLayered(path)
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files and empty paths are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.Storage.DataFile == "" {
		return errors.New("config: storage.data_file cannot be empty")
	}
	if c.Export.DefaultFile == "" {
		return errors.New("config: export.default_file cannot be empty")
	}
	if c.Log.Level != LevelOff {
		if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("config: log.level must be debug, info, warn, error or off, got %q", c.Log.Level)
		}
	}
	if c.Log.MaxSizeMB < 0 {
		return fmt.Errorf("config: log.max_size_mb must be non-negative, got %d", c.Log.MaxSizeMB)
	}
	if c.Log.MaxBackups < 0 {
		return fmt.Errorf("config: log.max_backups must be non-negative, got %d", c.Log.MaxBackups)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: CONTACTBOOK_DATA_FILE, CONTACTBOOK_EXPORT_FILE,
// CONTACTBOOK_LOG_LEVEL, CONTACTBOOK_LOG_FILE.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("CONTACTBOOK_DATA_FILE"); v != "" {
		c.Storage.DataFile = v
	}
	if v := os.Getenv("CONTACTBOOK_EXPORT_FILE"); v != "" {
		c.Export.DefaultFile = v
	}
	if v := os.Getenv("CONTACTBOOK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CONTACTBOOK_LOG_FILE"); v != "" {
		c.Log.File = v
	}
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Storage *rawStorage `yaml:"storage"`
	Export  *rawExport  `yaml:"export"`
	Log     *rawLog     `yaml:"log"`
}

type rawStorage struct {
	DataFile *string `yaml:"data_file"`
}

type rawExport struct {
	DefaultFile *string `yaml:"default_file"`
}

type rawLog struct {
	Level      *string `yaml:"level"`
	File       *string `yaml:"file"`
	MaxSizeMB  *int    `yaml:"max_size_mb"`
	MaxBackups *int    `yaml:"max_backups"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Storage != nil && layer.Storage.DataFile != nil {
		c.Storage.DataFile = *layer.Storage.DataFile
	}
	if layer.Export != nil && layer.Export.DefaultFile != nil {
		c.Export.DefaultFile = *layer.Export.DefaultFile
	}
	if layer.Log != nil {
		if layer.Log.Level != nil {
			c.Log.Level = *layer.Log.Level
		}
		if layer.Log.File != nil {
			c.Log.File = *layer.Log.File
		}
		if layer.Log.MaxSizeMB != nil {
			c.Log.MaxSizeMB = *layer.Log.MaxSizeMB
		}
		if layer.Log.MaxBackups != nil {
			c.Log.MaxBackups = *layer.Log.MaxBackups
		}
	}
}
