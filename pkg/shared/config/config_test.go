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
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewConfig(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: debug
server:
  address: ":9000"
redis:
  address: "redis:6379"
  db: 2
queue:
  stream: custom_stream
worker:
  consumers: 4
  block_timeout: 2s
  claim_min_idle: 45s
classifier:
  url: "http://classifier:8000"
  threshold: 0.7
`)

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, "redis:6379", cfg.Redis.Address)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "custom_stream", cfg.Queue.Stream)
	assert.Equal(t, 4, cfg.Worker.Consumers)
	assert.Equal(t, 2*time.Second, cfg.Worker.BlockTimeout)
	assert.Equal(t, "http://classifier:8000", cfg.Classifier.URL)
	assert.Equal(t, 0.7, cfg.Classifier.Threshold)

	// Unset fields pick up defaults.
	assert.Equal(t, "analysis_workers", cfg.Queue.Group)
	assert.Equal(t, 10, cfg.Worker.BatchSize)
	assert.Equal(t, time.Hour, cfg.Results.TTL)
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestNewConfigDirectory(t *testing.T) {
	_, err := NewConfig(t.TempDir())
	assert.Error(t, err)
}

func TestNewConfigMalformedYAML(t *testing.T) {
	path := writeConfig(t, "worker: [not a map\n")
	_, err := NewConfig(path)
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8001", cfg.Server.Address)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, "code_analysis_stream", cfg.Queue.Stream)
	assert.Equal(t, "analysis_workers", cfg.Queue.Group)
	assert.Equal(t, 2, cfg.Worker.Consumers)
	assert.Equal(t, 30*time.Second, cfg.Worker.ClaimMinIdle)
	assert.Equal(t, 0.6, cfg.Classifier.Threshold)
	assert.Empty(t, cfg.Classifier.URL)

	require.NoError(t, ValidateConfig(cfg))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold too high", func(c *Config) { c.Classifier.Threshold = 1 }},
		{"threshold negative", func(c *Config) { c.Classifier.Threshold = -0.1 }},
		{"no consumers", func(c *Config) { c.Worker.Consumers = -1 }},
		{"zero batch", func(c *Config) { c.Worker.BatchSize = -1 }},
		{"claim idle below block", func(c *Config) { c.Worker.ClaimMinIdle = 500 * time.Millisecond }},
		{"non-positive ttl", func(c *Config) { c.Results.TTL = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, ValidateConfig(cfg))
		})
	}
}
