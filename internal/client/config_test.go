package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg, err := ConfigFromEnv(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, DefaultBaseDelay, cfg.BaseDelay)
	assert.Equal(t, SendPolicyDrop, cfg.SendPolicy)
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("COLLAB_WS_URL", "ws://relay.internal:9000/ws")
	t.Setenv("COLLAB_MAX_RECONNECT_ATTEMPTS", "7")
	t.Setenv("COLLAB_RECONNECT_BASE_DELAY", "250ms")

	cfg, err := ConfigFromEnv(nil)
	require.NoError(t, err)
	assert.Equal(t, "ws://relay.internal:9000/ws", cfg.URL)
	assert.Equal(t, 7, cfg.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.BaseDelay)
}

func TestConfigWithDefaultsFillsZeroValues(t *testing.T) {
	cfg := (&Config{URL: "ws://localhost/ws"}).withDefaults()
	assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, DefaultBaseDelay, cfg.BaseDelay)
	assert.NotNil(t, cfg.Logger)
}
