package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Akashc1512/SarvanOM-sub006/internal/cache"
	inmemCache "github.com/Akashc1512/SarvanOM-sub006/internal/cache/inmemory"
	"github.com/Akashc1512/SarvanOM-sub006/internal/rest/ws"
	cStorage "github.com/Akashc1512/SarvanOM-sub006/internal/storage/client"
	inmemClient "github.com/Akashc1512/SarvanOM-sub006/internal/storage/client/inmemory"
	rStorage "github.com/Akashc1512/SarvanOM-sub006/internal/storage/room"
	inmemRoom "github.com/Akashc1512/SarvanOM-sub006/internal/storage/room/inmemory"
)

// Rest is the collaboration relay application: a chi router exposing /ping
// and the /ws collaboration endpoint.
type Rest struct {
	config *Config

	server *http.Server
}

func NewRest(config *Config) *Rest {
	return &Rest{
		config: config,
	}
}

func (rest *Rest) Start() {
	router := chi.NewRouter()

	// Define the /ping endpoint
	router.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write([]byte("pong"))
		if err != nil {
			return
		}
	})

	// Define the /ws endpoint
	clientsStorage, roomsStorage := rest.defineStorage()
	profileCache := rest.defineCache()

	wsHandler := ws.NewHandler(
		clientsStorage,
		roomsStorage,
		profileCache,
		rest.config.ProfileTTL,
		rest.config.Logger,
	)
	router.HandleFunc("/ws", wsHandler.Handle)

	rest.server = &http.Server{
		Addr:              ":" + strconv.Itoa(rest.config.Port),
		Handler:           router,
		ReadHeaderTimeout: 0,
	}
	if err := rest.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		rest.config.Logger.Error("server error", zap.Error(err))
		return
	}
}

func (rest *Rest) Stop() {
	if err := rest.server.Shutdown(context.Background()); err != nil {
		rest.config.Logger.Error("server error", zap.Error(err))
	}
}

func (rest *Rest) defineStorage() (cStorage.Storage, rStorage.Storage) {
	var clientsStorage cStorage.Storage
	var roomsStorage rStorage.Storage

	switch rest.config.ClientsStorageType {
	case cStorage.InMemoryStorageType:
		rest.config.Logger.Info("Using in-memory storage for clients")
		clientsStorage = inmemClient.NewStorage(rest.config.Logger)
	default:
		rest.config.Logger.Info("Using in-memory storage for clients")
		clientsStorage = inmemClient.NewStorage(rest.config.Logger)
	}
	switch rest.config.RoomsStorageType {
	case rStorage.InMemoryStorageType:
		rest.config.Logger.Info("Using in-memory storage for rooms")
		roomsStorage = inmemRoom.NewStorage(rest.config.Logger)
	default:
		rest.config.Logger.Info("Using in-memory storage for rooms")
		roomsStorage = inmemRoom.NewStorage(rest.config.Logger)
	}

	return clientsStorage, roomsStorage
}

func (rest *Rest) defineCache() cache.Cache {
	var c cache.Cache

	switch rest.config.CacheType {
	case cache.InMemoryCacheType:
		rest.config.Logger.Info("Using in-memory profile cache")
		c = inmemCache.NewCache(rest.config.Logger)
	default:
		rest.config.Logger.Info("Using in-memory profile cache")
		c = inmemCache.NewCache(rest.config.Logger)
	}

	return c
}
