package client

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
)

// SendPolicy decides what happens to messages sent while the connection is
// not established.
type SendPolicy int

const (
	// SendPolicyDrop logs a warning and drops the message. Delivery is
	// at-most-once, best effort. This is the default.
	SendPolicyDrop SendPolicy = iota

	// SendPolicyBuffer holds messages in memory and flushes them in order
	// once a connection is (re)established. The buffer is discarded on an
	// explicit Disconnect.
	SendPolicyBuffer
)

const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = time.Second
)

type Config struct {
	// URL is the websocket endpoint of the collaboration relay.
	URL string `env:"COLLAB_WS_URL"`

	// MaxAttempts bounds automatic reconnection. Once exhausted the
	// manager transitions to StateFailed and stops retrying.
	MaxAttempts int `env:"COLLAB_MAX_RECONNECT_ATTEMPTS"`

	// BaseDelay is multiplied by the attempt number, producing a linearly
	// increasing backoff.
	BaseDelay time.Duration `env:"COLLAB_RECONNECT_BASE_DELAY"`

	SendPolicy SendPolicy

	Logger *zap.Logger
}

// ConfigFromEnv builds a Config from the environment. The relay URL is
// environment-provided by deployment.
func ConfigFromEnv(logger *zap.Logger) (*Config, error) {
	cfg := Config{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Logger:      logger,
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing client env config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) withDefaults() *Config {
	out := *c
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = DefaultMaxAttempts
	}
	if out.BaseDelay <= 0 {
		out.BaseDelay = DefaultBaseDelay
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	return &out
}
