package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/channelvault")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "ChannelVault/1.0", cfg.UserAgent)
	assert.Equal(t, 30*time.Second, cfg.FeedTimeout)
	assert.Equal(t, 10*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, DefaultChannelsURL, cfg.ChannelsURL)
	assert.Equal(t, DefaultStreamsURL, cfg.StreamsURL)
	assert.Equal(t, DefaultLogosURL, cfg.LogosURL)
	assert.Equal(t, DefaultPlaylistTemplate, cfg.PlaylistTemplate)
	assert.True(t, cfg.RefreshOnEmpty)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/channelvault")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("FEED_TIMEOUT", "45s")
	t.Setenv("CHANNELS_URL", "https://mirror.example/channels.json")
	t.Setenv("REFRESH_ON_EMPTY", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 45*time.Second, cfg.FeedTimeout)
	assert.Equal(t, "https://mirror.example/channels.json", cfg.ChannelsURL)
	assert.False(t, cfg.RefreshOnEmpty)
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	// Run from a directory without .env files so nothing sneaks in.
	t.Chdir(t.TempDir())

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingDatabaseURL)
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	dir := t.TempDir()
	env := "DATABASE_URL=postgres://fromfile/channelvault\nREDIS_URL=redis://localhost:6379/0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://fromfile/channelvault", cfg.DatabaseURL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `database_url: postgres://localhost/channelvault
server_port: "9999"
refresh_on_empty: false
feed_timeout: 1m
`
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.ServerPort)
	assert.False(t, cfg.RefreshOnEmpty)
	assert.Equal(t, time.Minute, cfg.FeedTimeout)
	// Unset fields still get defaults.
	assert.Equal(t, DefaultStreamsURL, cfg.StreamsURL)
}
