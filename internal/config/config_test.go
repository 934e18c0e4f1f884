package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webhook = "https://discord.com/api/webhooks/1/abc"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DISCORD_WEBHOOK", webhook)

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, webhook, cfg.WebhookURL)
	assert.Equal(t, "https://gagapi.onrender.com", cfg.APIBase)
	assert.Equal(t, 12*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 5*time.Minute, cfg.FetchInterval)
	assert.Equal(t, 3, cfg.Limits.Columns)
	assert.Equal(t, 10, cfg.Limits.MaxUnits)
	assert.Equal(t, 3800, cfg.Limits.MaxUnitLength)
}

func TestLoad_WebhookRequired(t *testing.T) {
	t.Setenv("DISCORD_WEBHOOK", "")

	_, err := Load("")

	assert.ErrorContains(t, err, "WebhookURL")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DISCORD_WEBHOOK", webhook)
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("FETCH_INTERVAL", "1m")
	t.Setenv("LAYOUT_COLUMNS", "0")
	t.Setenv("MAX_ITEMS_PER_CATEGORY", "4")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, time.Minute, cfg.FetchInterval)
	assert.Equal(t, 0, cfg.Limits.Columns)
	assert.Equal(t, 4, cfg.MaxItemsPerCategory)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("DISCORD_WEBHOOK", webhook)
	t.Setenv("HTTP_TIMEOUT", "soon")

	_, err := Load("")

	assert.ErrorContains(t, err, "HTTP_TIMEOUT")
}

func TestLoad_YAMLFileWithEnvExpansion(t *testing.T) {
	t.Setenv("DISCORD_WEBHOOK", "")
	t.Setenv("HOOK_ID", "42")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
webhook_url: https://discord.com/api/webhooks/${HOOK_ID}/token
http_timeout: 5s
max_items_per_category: 8
log_level: warn
limits:
  columns: 2
  max_units: 10
  max_total_length: 5800
  max_unit_length: 2000
  max_field_length: 1024
  max_title_length: 256
  max_fields: 25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "https://discord.com/api/webhooks/42/token", cfg.WebhookURL)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 8, cfg.MaxItemsPerCategory)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, 2, cfg.Limits.Columns)
	assert.Equal(t, 2000, cfg.Limits.MaxUnitLength)
}

func TestLoad_TotalLengthAbovePlatformCeiling(t *testing.T) {
	t.Setenv("DISCORD_WEBHOOK", webhook)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("limits:\n  max_total_length: 6500\n"), 0o600))

	_, err := Load(path)

	assert.ErrorContains(t, err, "MaxTotalLength")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("DISCORD_WEBHOOK", webhook)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.ErrorContains(t, err, "config file not found")
}
