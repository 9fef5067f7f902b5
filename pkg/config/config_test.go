package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "/metrics", c.Metrics.Path)
	assert.False(t, c.Metrics.Disabled)
	assert.Equal(t, 3, c.Fetch.MaxAttempts)
	assert.Equal(t, 300*time.Millisecond, c.Fetch.Backoff)
	assert.Equal(t, uint32(5), c.Fetch.Breaker.ConsecutiveFailures)
	assert.Equal(t, 15*time.Second, c.Analysis.Deadline)
	assert.Equal(t, 5, c.Analysis.NewsLimit)
	assert.Equal(t, 1.5, c.Analysis.Thresholds.ActiveVolumeRatio)
	assert.Equal(t, 20.0, c.Analysis.Thresholds.LowValuationPE)
	assert.Equal(t, 10*time.Minute, c.Cache.SnapshotTTL)
	assert.False(t, c.Cache.Redis.Enabled)
	assert.False(t, c.Kafka.Enabled)
	assert.Equal(t, -1, c.Kafka.RequiredAcks)
}

func TestLoad_YAMLOverrides(t *testing.T) {
	path := writeConfig(t, `
environment: production
server:
  port: 9000
fetch:
  max_attempts: 5
  backoff: 100ms
analysis:
  thresholds:
    healthy_roe: 15
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, 9000, c.Server.Port)
	assert.Equal(t, 5, c.Fetch.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, c.Fetch.Backoff)
	assert.Equal(t, 15.0, c.Analysis.Thresholds.HealthyROE)
	// untouched keys keep their defaults
	assert.Equal(t, 2*time.Second, c.Fetch.MaxBackoff)
	assert.Equal(t, 1.5, c.Analysis.Thresholds.ActiveVolumeRatio)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"log level", "log:\n  level: loud\n"},
		{"attempts", "fetch:\n  max_attempts: 11\n"},
		{"turnover band", "analysis:\n  thresholds:\n    low_turnover_rate: 9\n"},
		{"backoff above max", "fetch:\n  backoff: 5s\n  max_backoff: 2s\n"},
		{"kafka without brokers", "kafka:\n  enabled: true\n"},
		{"compression", "kafka:\n  compression: brotli\n"},
		{"malformed", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadWithEnv_Overrides(t *testing.T) {
	t.Setenv("STOCKPULSE_ENV", "staging")
	t.Setenv("STOCKPULSE_LOG_LEVEL", "debug")
	t.Setenv("STOCKPULSE_PORT", "9090")
	t.Setenv("STOCKPULSE_REDIS_ADDR", "redis:6379")
	t.Setenv("STOCKPULSE_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("STOCKPULSE_KAFKA_TOPIC", "reports")

	c, err := LoadWithEnv("")
	require.NoError(t, err)

	assert.Equal(t, "staging", c.Environment)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, 9090, c.Server.Port)
	assert.True(t, c.Cache.Redis.Enabled)
	assert.Equal(t, "redis:6379", c.Cache.Redis.Addr)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "reports", c.Kafka.Topic)
}

func TestLoadWithEnv_BadPort(t *testing.T) {
	t.Setenv("STOCKPULSE_PORT", "eighty")
	_, err := LoadWithEnv("")
	assert.Error(t, err)
}

func TestLoad_ExampleFile(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost:9092"}, c.Kafka.Brokers)
}
