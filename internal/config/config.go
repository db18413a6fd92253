// Package config provides configuration loading and validation for the MindCoach service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents service configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via
// environment variables or CLI flags.
type Config struct {
	// Service
	Port        int    `json:"port,omitempty"`         // HTTP listen port
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key

	// Generation
	MaxLessons     int  `json:"max_lessons,omitempty"`     // Upper bound on lessons per curriculum
	LessonParallel int  `json:"lesson_parallel,omitempty"` // Concurrent lesson content generations
	UseBrowser     bool `json:"use_browser,omitempty"`     // Use headless browser for document URL ingestion
	Verbose        bool `json:"verbose,omitempty"`         // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

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
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}
	if c.MaxLessons < 0 {
		return fmt.Errorf("config error: 'max_lessons' must be non-negative")
	}
	if c.LessonParallel < 0 {
		return fmt.Errorf("config error: 'lesson_parallel' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.MaxLessons == 0 {
		result.MaxLessons = defaults.MaxLessons
	}
	if result.LessonParallel == 0 {
		if defaults.LessonParallel > 0 {
			result.LessonParallel = defaults.LessonParallel
		} else {
			result.LessonParallel = 3
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
