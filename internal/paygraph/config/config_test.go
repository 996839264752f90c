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
	p := filepath.Join(t.TempDir(), "paygraph.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(60), cfg.WindowSec)
	assert.Equal(t, MedianIncremental, cfg.Median)
	assert.Equal(t, "./venmo_output/output.txt", cfg.Output)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	p := writeConfig(t, `
window_sec: 30
median: recompute
inputs: [a.txt, b.txt]
kafka:
  topic: payments
sql:
  driver: sqlite
  dsn: /tmp/medians.db
retry:
  max_attempts: 2
  base_delay: 250ms
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, int64(30), cfg.WindowSec)
	assert.Equal(t, MedianRecompute, cfg.Median)
	assert.Equal(t, []string{"a.txt", "b.txt"}, cfg.Inputs)
	assert.Equal(t, "payments", cfg.Kafka.Topic)
	assert.Equal(t, "127.0.0.1:9092", cfg.Kafka.Brokers, "unset keys keep defaults")
	assert.Equal(t, "sqlite", cfg.SQL.Driver)

	pol := cfg.RetryPolicy()
	assert.Equal(t, 2, pol.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, pol.BaseDelay)
	assert.Equal(t, 5*time.Second, pol.MaxDelay)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "windw_sec: 10\n"},
		{"zero window", "window_sec: 0\n"},
		{"bad median", "median: heap\n"},
		{"bad driver", "sql:\n  driver: mysql\n  dsn: x\n"},
		{"missing dsn", "sql:\n  driver: pgx\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
