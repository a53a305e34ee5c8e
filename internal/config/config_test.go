package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `{
		"listen_addr": "localhost:8080",
		"max_turns": 12,
		"answer_timeout": "90s",
		"content_weight": 0.6,
		"target_level": "advanced"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", cfg.ListenAddr)
	assert.Equal(t, 12, cfg.MaxTurns)
	assert.Equal(t, "90s", cfg.AnswerTimeout)
	assert.Equal(t, 0.6, cfg.ContentWeight)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 90*time.Second, cfg.AnswerTimeoutDuration())
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadConfig_MalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"max_turns": `)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"max turns over limit", Config{MaxTurns: 500}},
		{"negative retry budget", Config{RetryBudget: -1}},
		{"content weight out of range", Config{ContentWeight: 1.5}},
		{"unknown target level", Config{TargetLevel: "wizard"}},
		{"bad timeout", Config{AnswerTimeout: "soon"}},
		{"bad listen addr", Config{ListenAddr: "not a hostport"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}

func TestValidate_ZeroConfigOK(t *testing.T) {
	cfg := Config{}
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{MaxTurns: 5}
	merged := cfg.MergeWithDefaults(Config{
		ListenAddr:    "localhost:9090",
		MaxTurns:      10,
		PerArmCap:     3,
		ContentWeight: 0.65,
	})

	assert.Equal(t, 5, merged.MaxTurns, "explicit value wins over default")
	assert.Equal(t, "localhost:9090", merged.ListenAddr)
	assert.Equal(t, 3, merged.PerArmCap)
	assert.Equal(t, 0.65, merged.ContentWeight)
}

func TestMergeWithDefaults_ContentWeightFallback(t *testing.T) {
	merged := (&Config{}).MergeWithDefaults(Config{})
	assert.Equal(t, 0.7, merged.ContentWeight)
}
