package titanium

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titanium.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
tick_rate: 100ms
modules:
  example: false
  example.welcome: true
admins:
  - Steve
rewards:
  backend: sqlite
  path: data/rewards.db
  autosave: 1m
  supporters:
    - 5f0c1c4e-8a8b-4c4f-9e3b-1c2d3e4f5a6b
log:
  level: debug
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, cfg.TickRate)
	assert.Equal(t, map[string]bool{"example": false, "example.welcome": true}, cfg.Modules)
	assert.Equal(t, []string{"Steve"}, cfg.Admins)
	assert.Equal(t, "sqlite", cfg.Rewards.Backend)
	assert.Equal(t, "data/rewards.db", cfg.Rewards.Path)
	assert.Equal(t, time.Minute, cfg.Rewards.Autosave)
	assert.Equal(t, "overworld", cfg.Rewards.World)
	assert.Len(t, cfg.Rewards.Supporters, 1)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
}

func TestLoadConfigFallsBackToEnv(t *testing.T) {
	t.Setenv("TITANIUM_TICK_RATE", "20ms")
	t.Setenv("TITANIUM_ADMINS", "Steve,Alex")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, cfg.TickRate)
	assert.Equal(t, []string{"Steve", "Alex"}, cfg.Admins)
	assert.Equal(t, "file", cfg.Rewards.Backend)
	assert.Equal(t, ":8081", cfg.Sync.Addr)
}

func TestConfigIsAdmin(t *testing.T) {
	cfg := Config{Admins: []string{"Steve", "2535400000000000"}}
	assert.True(t, cfg.IsAdmin("steve", ""))
	assert.True(t, cfg.IsAdmin("Someone", "2535400000000000"))
	assert.False(t, cfg.IsAdmin("Alex", "1"))
}

func TestLogLevelDefaultsToInfo(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "loud"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "warn"}.SlogLevel())
}
