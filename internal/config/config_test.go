package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8484, cfg.Server.Port)
	assert.Equal(t, 2000, cfg.Worker.QueueCapacity)
	assert.Equal(t, 3, cfg.Worker.MaxAttempts)
	assert.Equal(t, []int{2, 5, 15}, cfg.Worker.BackoffSeconds)
	assert.Equal(t, 30, cfg.Worker.PosterTTLDays)
	assert.True(t, cfg.Worker.Enabled)
	assert.False(t, cfg.Retro.Enabled)
	assert.Equal(t, "https://graphql.anilist.co", cfg.Metadata.AniList.Endpoint)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9000
worker:
  max_attempts: 5
  backoff_seconds: [1, 2]
retro:
  enabled: true
  cron: "0 2 * * *"
metadata:
  tmdb:
    api_key: from-file
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	t.Setenv("POSTERD_WORKER_MAX_ATTEMPTS", "7")
	t.Setenv("POSTERD_METADATA_IGDB_CLIENT_ID", "twitch-id")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 7, cfg.Worker.MaxAttempts, "env wins over file")
	assert.Equal(t, []int{1, 2}, cfg.Worker.BackoffSeconds)
	assert.True(t, cfg.Retro.Enabled)
	assert.Equal(t, "0 2 * * *", cfg.Retro.Cron)
	assert.Equal(t, "from-file", cfg.Metadata.TMDB.APIKey)
	assert.Equal(t, "twitch-id", cfg.Metadata.IGDB.ClientID)
	assert.Equal(t, 250, cfg.Worker.MinIntervalMs, "defaults fill unset keys")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEmbeddedKeys(t *testing.T) {
	orig := EmbeddedFanartKey
	EmbeddedFanartKey = "embedded"
	t.Cleanup(func() { EmbeddedFanartKey = orig })

	cfg := Default()
	assert.Equal(t, "embedded", cfg.Metadata.Fanart.APIKey)

	cfg.Metadata.Fanart.APIKey = "explicit"
	applyEmbeddedKeys(cfg)
	assert.Equal(t, "explicit", cfg.Metadata.Fanart.APIKey)
}

func TestServerAddress(t *testing.T) {
	c := ServerConfig{Host: "127.0.0.1", Port: 8484}
	assert.Equal(t, "127.0.0.1:8484", c.Address())
}
