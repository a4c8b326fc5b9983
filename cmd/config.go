package cmd

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Apps struct {
		LogLevel string `yaml:"log_level" env:"COLLAB_LOG_LEVEL"`
		Relay    struct {
			Port       int   `yaml:"port" env:"COLLAB_RELAY_PORT"`
			ProfileTTL int64 `yaml:"profile_ttl" env:"COLLAB_PROFILE_TTL"`
		} `yaml:"relay"`
	} `yaml:"apps"`
	Storage struct {
		Clients struct {
			Type string `yaml:"type"`
		} `yaml:"clients"`
		Rooms struct {
			Type string `yaml:"type"`
		} `yaml:"rooms"`
	} `yaml:"storage"`
	Cache struct {
		Type string `yaml:"type"`
	} `yaml:"cache"`
}

// ParseConfig loads the yaml config at path and applies environment
// overrides on top, so deployments can tune the relay without editing the
// file. A missing file leaves the defaults in place.
func ParseConfig(path string, logger *zap.Logger) (*Config, error) {
	config := defaultConfig()

	file, err := os.Open(path)
	switch {
	case os.IsNotExist(err):
		logger.Info("No config file found, using defaults", zap.String("path", path))
	case err != nil:
		logger.Error("Failed to open config file", zap.Error(err))
		return nil, fmt.Errorf("error opening file %w", err)
	default:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(config); err != nil {
			logger.Error("Failed to decode config file", zap.Error(err))
			return nil, fmt.Errorf("error decoding file %w", err)
		}
	}

	if err := env.Parse(config); err != nil {
		logger.Error("Failed to parse env overrides", zap.Error(err))
		return nil, fmt.Errorf("error parsing env %w", err)
	}

	return config, nil
}

func defaultConfig() *Config {
	var config Config
	config.Apps.LogLevel = "info"
	config.Apps.Relay.Port = 8080
	config.Apps.Relay.ProfileTTL = 300
	config.Storage.Clients.Type = "in-memory"
	config.Storage.Rooms.Type = "in-memory"
	config.Cache.Type = "in-memory"
	return &config
}
