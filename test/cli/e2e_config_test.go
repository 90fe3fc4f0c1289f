package cli_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigShow(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("config", "show")
	require.NoError(t, err)

	var settings map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &settings))

	session, ok := settings["session"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "30m0s", session["timeout"])
	assert.Equal(t, "UTC", session["timezone"])

	storage, ok := settings["storage"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, env.dbPath, storage["path"])
}

func TestConfig_BadConfigFileFails(t *testing.T) {
	env := newTestEnv(t)
	env.configPath = "/nonexistent/config.yaml"

	_, _, err := env.run("config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "pingstat")
}
