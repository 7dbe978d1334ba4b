package config

import (
	"github.com/sdejongh/filesim/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Similarity SimilarityConfig `yaml:"similarity"`
	Storage    StorageConfig    `yaml:"storage"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
	Exclude    []string         `yaml:"exclude"`
}

// StorageConfig holds settings for loading files from disk
type StorageConfig struct {
	MaxContentBytes int64 `yaml:"max_content_bytes"` // Larger files are loaded without content
	BandwidthLimit  int64 `yaml:"bandwidth_limit"`   // bytes per second, 0 = unlimited
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show progress bar during batch analysis
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
	Color    bool   `yaml:"color"`
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Format string `yaml:"format"` // "json" or "text"
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	File   string `yaml:"file"`   // Log file path (empty = stderr only)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Similarity: DefaultSimilarity(),
		Storage: StorageConfig{
			MaxContentBytes: 4 * 1024 * 1024,
			BandwidthLimit:  0,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Quiet:    false,
			Color:    true,
		},
		Logging: LoggingConfig{
			Format: "text",
			Level:  "warn",
			File:   "",
		},
		Exclude: []string{
			"*.tmp",
			".git/",
			"node_modules/",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Similarity.Validate(); err != nil {
		return err
	}

	if c.Storage.MaxContentBytes < 0 {
		return &models.ValidationError{
			Field:   "storage.max_content_bytes",
			Message: "cannot be negative",
		}
	}

	if c.Storage.BandwidthLimit < 0 {
		return &models.ValidationError{
			Field:   "storage.bandwidth_limit",
			Message: "cannot be negative",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}
