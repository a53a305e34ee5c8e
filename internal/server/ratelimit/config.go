package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Tier groups endpoints that share a budget. Answer submission drives an
// LLM call per request, so it gets the tightest tier.
type Tier struct {
	Name    string
	Methods []string
	Match   func(path string) bool
	Limit   int // requests per window
	Window  time.Duration
	Burst   int // burst capacity, defaults to Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	CleanupInterval time.Duration
	Exempt          map[string]bool // client IDs that bypass limiting
	Tiers           []Tier
}

// DefaultConfig returns the standard tiering, overridable via
// RATE_LIMIT_* environment variables.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         getEnvBool("RATE_LIMIT_ENABLED", true),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Exempt:          parseClientList(os.Getenv("RATE_LIMIT_EXEMPT")),
		Tiers: []Tier{
			// Answer submission and question selection hit the judge and
			// the bandit; one interview turn per few seconds is plenty.
			{
				Name:    "turns",
				Methods: []string{"POST"},
				Match: func(path string) bool {
					return strings.HasSuffix(path, "/answers") || strings.HasSuffix(path, "/question")
				},
				Limit:  getEnvInt("RATE_LIMIT_TURNS", 30),
				Window: time.Minute,
				Burst:  5,
			},
			// Session lifecycle writes
			{
				Name:    "sessions",
				Methods: []string{"POST", "DELETE"},
				Match:   func(path string) bool { return strings.HasPrefix(path, "/sessions") },
				Limit:   getEnvInt("RATE_LIMIT_SESSIONS", 60),
				Window:  time.Minute,
				Burst:   10,
			},
			// Reads
			{
				Name:    "reads",
				Methods: []string{"GET"},
				Match:   func(path string) bool { return path != "/health" },
				Limit:   getEnvInt("RATE_LIMIT_READS", 600),
				Window:  time.Minute,
			},
		},
	}
}

// matchTier returns the first tier whose method set and path matcher
// accept the request, or nil for unlimited endpoints.
func (c *Config) matchTier(path, method string) *Tier {
	for i := range c.Tiers {
		tier := &c.Tiers[i]
		if !tier.Match(path) {
			continue
		}
		for _, m := range tier.Methods {
			if m == method {
				return tier
			}
		}
	}
	return nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseClientList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			result[id] = true
		}
	}
	return result
}
