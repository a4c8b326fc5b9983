package rest

import (
	"go.uber.org/zap"
)

type Config struct {
	// Port is the port where the relay will listen
	Port int

	// ProfileTTL is how long, in seconds, collaborator profiles are cached
	// across reconnects
	ProfileTTL int64

	// ClientsStorageType and RoomsStorageType select the storage backends
	ClientsStorageType string
	RoomsStorageType   string

	// CacheType selects the profile cache backend
	CacheType string

	Logger *zap.Logger
}
