// Package config provides configuration loading and validation for the
// interview service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents the service configuration that can be loaded from a
// JSON file. All fields are optional; missing values use defaults or must
// be provided via CLI flags.
type Config struct {
	// Service
	ListenAddr  string `json:"listen_addr,omitempty" validate:"omitempty,hostname_port"`
	DatabaseURL string `json:"database_url,omitempty"`
	APIKey      string `json:"api_key,omitempty"` // Gemini API key

	// Speech services
	TranscriberURL string `json:"transcriber_url,omitempty" validate:"omitempty,url"`

	// Session defaults
	MaxTurns      int     `json:"max_turns,omitempty" validate:"omitempty,min=1,max=100"`
	PerArmCap     int     `json:"per_arm_cap,omitempty" validate:"omitempty,min=1"`
	RetryBudget   int     `json:"retry_budget,omitempty" validate:"omitempty,min=0,max=10"`
	AnswerTimeout string  `json:"answer_timeout,omitempty"` // Go duration string, e.g. "2m"
	ContentWeight float64 `json:"content_weight,omitempty" validate:"omitempty,gt=0,lt=1"`

	// Candidate level the question priors are tuned for
	TargetLevel string `json:"target_level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced expert"`

	// Behavior
	Verbose bool `json:"verbose,omitempty"`
}

var validate = validator.New()

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
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.AnswerTimeout != "" {
		d, err := time.ParseDuration(c.AnswerTimeout)
		if err != nil {
			return fmt.Errorf("config error: 'answer_timeout' is not a valid duration: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("config error: 'answer_timeout' must be positive")
		}
	}
	return nil
}

// AnswerTimeoutDuration parses the configured answer timeout, returning
// zero when unset. Call Validate first.
func (c *Config) AnswerTimeoutDuration() time.Duration {
	if c.AnswerTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.AnswerTimeout)
	if err != nil {
		return 0
	}
	return d
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.TranscriberURL == "" {
		result.TranscriberURL = defaults.TranscriberURL
	}
	if result.AnswerTimeout == "" {
		result.AnswerTimeout = defaults.AnswerTimeout
	}
	if result.TargetLevel == "" {
		result.TargetLevel = defaults.TargetLevel
	}

	// Int fields: use default if zero
	if result.MaxTurns == 0 {
		result.MaxTurns = defaults.MaxTurns
	}
	if result.PerArmCap == 0 {
		result.PerArmCap = defaults.PerArmCap
	}
	if result.RetryBudget == 0 {
		result.RetryBudget = defaults.RetryBudget
	}

	// Float fields
	if result.ContentWeight == 0 {
		if defaults.ContentWeight > 0 {
			result.ContentWeight = defaults.ContentWeight
		} else {
			result.ContentWeight = 0.7 // Content carries most of the score
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
