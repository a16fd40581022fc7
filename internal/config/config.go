// Package config provides configuration loading and validation for the screener.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/candidate-screener/internal/skills"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Screening
	VocabularyFile string `json:"vocabulary_file,omitempty"` // JSON vocabulary; empty uses the built-in list
	MatchMode      string `json:"match_mode,omitempty"`      // "substring" or "word"
	Concurrency    int    `json:"concurrency,omitempty"`     // documents screened at once
	MaxUploadBytes int64  `json:"max_upload_bytes,omitempty"`

	// Storage and serving
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	Port        int    `json:"port,omitempty"`

	// Logging
	LogJSON bool `json:"log_json,omitempty"`
	Debug   bool `json:"debug,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if _, err := skills.ParseMatchMode(c.MatchMode); err != nil {
		return fmt.Errorf("config error: 'match_mode': %w", err)
	}

	if c.Concurrency < 0 {
		return fmt.Errorf("config error: 'concurrency' must be non-negative")
	}
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("config error: 'max_upload_bytes' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}

	if c.VocabularyFile != "" {
		if _, err := os.Stat(c.VocabularyFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: vocabulary file not found: %s", c.VocabularyFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.VocabularyFile == "" {
		result.VocabularyFile = defaults.VocabularyFile
	}
	if result.MatchMode == "" {
		result.MatchMode = defaults.MatchMode
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Extractor builds the skill extractor described by the configuration.
func (c *Config) Extractor() (*skills.Extractor, error) {
	mode, err := skills.ParseMatchMode(c.MatchMode)
	if err != nil {
		return nil, err
	}
	vocab, err := skills.LoadVocabulary(c.VocabularyFile)
	if err != nil {
		return nil, err
	}
	return skills.NewExtractor(vocab, mode), nil
}
