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
	path := filepath.Join(t.TempDir(), "pingstat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, "pingstat.db", cfg.Storage.Path)
	assert.Equal(t, 30*time.Minute, cfg.Session.Timeout)
	assert.Equal(t, "UTC", cfg.Session.Timezone)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_addr: ":9090"
session:
  timeout: 1h
  timezone: Europe/Berlin
storage:
  path: /tmp/analytics.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, time.Hour, cfg.Session.Timeout)
	assert.Equal(t, "Europe/Berlin", cfg.Session.Timezone)
	assert.Equal(t, "/tmp/analytics.db", cfg.Storage.Path)
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	// An explicit path that does not exist is an error; no path falls back
	// to defaults.
	require.Error(t, err)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.Session.Timeout)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	path := writeConfig(t, `
session:
  timeout: -5m
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "session.timeout")
}

func TestLoad_InvalidTimezone(t *testing.T) {
	path := writeConfig(t, `
session:
  timezone: Mars/Olympus
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "session.timezone")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PINGSTAT_SESSION_TIMEOUT", "45m")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, cfg.Session.Timeout)
}
