package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestParseConfigReadsYaml(t *testing.T) {
	path := writeConfigFile(t, `
apps:
  log_level: debug
  relay:
    port: 9001
    profile_ttl: 120
storage:
  clients:
    type: in-memory
  rooms:
    type: in-memory
cache:
  type: in-memory
`)

	config, err := ParseConfig(path, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "debug", config.Apps.LogLevel)
	assert.Equal(t, 9001, config.Apps.Relay.Port)
	assert.Equal(t, int64(120), config.Apps.Relay.ProfileTTL)
	assert.Equal(t, "in-memory", config.Storage.Clients.Type)
}

func TestParseConfigEnvOverridesYaml(t *testing.T) {
	path := writeConfigFile(t, `
apps:
  log_level: info
  relay:
    port: 9001
`)
	t.Setenv("COLLAB_RELAY_PORT", "9002")
	t.Setenv("COLLAB_LOG_LEVEL", "warn")

	config, err := ParseConfig(path, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 9002, config.Apps.Relay.Port)
	assert.Equal(t, "warn", config.Apps.LogLevel)
}

func TestParseConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := ParseConfig(filepath.Join(t.TempDir(), "nope.yaml"), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 8080, config.Apps.Relay.Port)
	assert.Equal(t, "info", config.Apps.LogLevel)
	assert.Equal(t, int64(300), config.Apps.Relay.ProfileTTL)
}
