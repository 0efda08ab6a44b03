package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Liquid4All/on-prem-stack/internal/cli"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LIQUID_CONFIG",
		"LIQUID_ENV_FILE",
		"LIQUID_COMPOSE_FILE",
		"LIQUID_API_URL",
		"LIQUID_DOCKER_HOST",
		"LIQUID_LOG_LEVEL",
		"LIQUID_LOG_FORMAT",
		"LIQUID_NO_COLOR",
	} {
		t.Setenv(key, "")
	}
}

// =============================================================================
// Settings Loading Tests
// =============================================================================

func TestLoadSettings_DefaultValues(t *testing.T) {
	clearEnv(t)

	settings, err := LoadSettings(nil)
	require.NoError(t, err)

	assert.Equal(t, cli.DefaultSettings(), *settings)
	assert.Equal(t, "liquid.yaml", settings.Config)
	assert.Equal(t, ".env", settings.EnvFile)
	assert.Equal(t, "docker-compose.yaml", settings.ComposeFile)
	assert.Equal(t, "http://0.0.0.0:8000", settings.APIURL)
	assert.Equal(t, "warn", settings.Log.Level)
	assert.Equal(t, "console", settings.Log.Format)
}

func TestLoadSettings_EnvironmentOverride(t *testing.T) {
	clearEnv(t)

	t.Setenv("LIQUID_CONFIG", "/etc/liquid/liquid.yaml")
	t.Setenv("LIQUID_DOCKER_HOST", "tcp://10.0.0.5:2375")
	t.Setenv("LIQUID_LOG_LEVEL", "debug")
	t.Setenv("LIQUID_NO_COLOR", "true")

	settings, err := LoadSettings(nil)
	require.NoError(t, err)

	assert.Equal(t, "/etc/liquid/liquid.yaml", settings.Config)
	assert.Equal(t, "tcp://10.0.0.5:2375", settings.Docker.Host)
	assert.Equal(t, "debug", settings.Log.Level)
	assert.True(t, settings.NoColor)
}

func TestLoadSettings_FlagsBeatEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("LIQUID_LOG_LEVEL", "debug")
	t.Setenv("LIQUID_ENV_FILE", "from-env.env")

	root := cli.NewRootCommand(cli.NewApp())
	require.NoError(t, root.PersistentFlags().Parse([]string{"--log-level", "error", "--compose-file", "stack.yaml"}))

	settings, err := LoadSettings(root.PersistentFlags())
	require.NoError(t, err)

	assert.Equal(t, "error", settings.Log.Level)
	assert.Equal(t, "stack.yaml", settings.ComposeFile)
	assert.Equal(t, "from-env.env", settings.EnvFile)
	assert.Equal(t, "liquid.yaml", settings.Config)
}

// =============================================================================
// Logger Setup Tests
// =============================================================================

func TestSetupLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(cli.LogSettings{Level: "info", Format: "json"}, &buf)

	logger.Info("volume created")
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "volume created", entry["msg"])
	assert.Equal(t, "info", entry["level"])
}

func TestSetupLogger_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(cli.LogSettings{Level: "debug", Format: "console"}, &buf)

	logger.Debug("running compose")
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "running compose")
}

func TestSetupLogger_InvalidLevelFallsBackToWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(cli.LogSettings{Level: "invalid", Format: "json"}, &buf)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}
