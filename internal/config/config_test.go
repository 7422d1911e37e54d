package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSimulation_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadSimulation(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSimulation(), cfg)
}

func TestLoadSimulation_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	raw := `
log_level: debug
session_id: run-7
max_slots: 2
tick_interval: 10ms
poll_interval: 250ms
max_size_multiplier: 3.5
history_backend: postgres
database:
  host: db
  port: 6543
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := LoadSimulation(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "run-7", cfg.SessionID)
	assert.Equal(t, 2, cfg.MaxSlots)
	assert.Equal(t, 10*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.InDelta(t, 3.5, cfg.MaxSizeMultiplier, 1e-9)
	assert.Equal(t, HistoryPostgres, cfg.HistoryBackend)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "skillcore", cfg.Database.User, "unset fields keep defaults")
	assert.Equal(t, "postgres://skillcore:skillcore@db:6543/skillcore?sslmode=disable", cfg.Database.DSN())
}

func TestLoadSimulation_RedisBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	raw := `
history_backend: redis
stop_after_script: true
redis:
  addr: cache:6380
  db: 2
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := LoadSimulation(path)
	require.NoError(t, err)
	assert.Equal(t, HistoryRedis, cfg.HistoryBackend)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.True(t, cfg.StopAfterScript)
}

func TestLoadSimulation_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "syntax", raw: "max_slots: [1"},
		{name: "zero slots", raw: "max_slots: 0"},
		{name: "negative poll", raw: "poll_interval: -1s"},
		{name: "zero tick", raw: "tick_interval: 0s"},
		{name: "unknown backend", raw: "history_backend: sqlite"},
		{name: "redis without addr", raw: "history_backend: redis\nredis:\n  addr: \"\""},
		{name: "negative size cap", raw: "max_size_multiplier: -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sim.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.raw), 0o600))
			_, err := LoadSimulation(path)
			assert.Error(t, err)
		})
	}
}
