package session

import (
	"fmt"
	"time"
)

// Config holds per-session behavior knobs. Defaults are calibration
// starting points, not product requirements.
type Config struct {
	// MaxTurns caps the number of questions asked in one session
	MaxTurns int `json:"max_turns"`
	// PerArmCap limits how often one arm may be presented per session
	PerArmCap int `json:"per_arm_cap"`
	// RetryBudget is the number of evaluation retries after the first attempt
	RetryBudget int `json:"retry_budget"`
	// RetryBackoff is the fixed wait between evaluation attempts
	RetryBackoff time.Duration `json:"retry_backoff"`
	// AnswerTimeout is the maximum wait for an answer; a later submission
	// degrades to the empty-transcript case rather than failing
	AnswerTimeout time.Duration `json:"answer_timeout"`

	// Early-stop heuristics (ignored for short sessions, MaxTurns <= 5)
	PlateauWindow  int     `json:"plateau_window"`
	PlateauStdDev  float64 `json:"plateau_std_dev"`
	PoorWindow     int     `json:"poor_window"`
	PoorMeanFloor  float64 `json:"poor_mean_floor"`
	DisableHeurist bool    `json:"disable_early_stop"`
}

// DefaultConfig returns the shipped session defaults.
func DefaultConfig() Config {
	return Config{
		MaxTurns:      10,
		PerArmCap:     3,
		RetryBudget:   2,
		RetryBackoff:  500 * time.Millisecond,
		AnswerTimeout: 2 * time.Minute,
		PlateauWindow: 5,
		PlateauStdDev: 0.1,
		PoorWindow:    3,
		PoorMeanFloor: 0.4,
	}
}

// Validate checks the configuration for impossible values.
func (c Config) Validate() error {
	if c.MaxTurns < 1 {
		return fmt.Errorf("max_turns must be at least 1")
	}
	if c.PerArmCap < 1 {
		return fmt.Errorf("per_arm_cap must be at least 1")
	}
	if c.RetryBudget < 0 {
		return fmt.Errorf("retry_budget must be non-negative")
	}
	if c.AnswerTimeout <= 0 {
		return fmt.Errorf("answer_timeout must be positive")
	}
	return nil
}

// earlyStopActive reports whether the plateau/poor-performance heuristics
// apply to this session.
func (c Config) earlyStopActive() bool {
	return !c.DisableHeurist && c.MaxTurns > 5
}
