package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TALLY_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 8484, cfg.HTTP.Port)
	require.Equal(t, "info", cfg.Log.Level)
	require.NotEmpty(t, cfg.Database.Path)
	require.Empty(t, cfg.Sync.WebhookURL)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := "[database]\npath = \"/tmp/custom.db\"\n\n[http]\nport = 9001\n\n[sync]\nwebhook_url = \"https://example.com/hook\"\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	t.Setenv("TALLY_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom.db", cfg.Database.Path)
	require.Equal(t, 9001, cfg.HTTP.Port)
	require.Equal(t, "https://example.com/hook", cfg.Sync.WebhookURL)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("TALLY_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("TALLY_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Log.Level)
}
