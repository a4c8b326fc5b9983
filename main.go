package main

import (
	"flag"

	"go.uber.org/zap"

	"github.com/Akashc1512/SarvanOM-sub006/cmd"
	"github.com/Akashc1512/SarvanOM-sub006/internal/rest"
	"github.com/Akashc1512/SarvanOM-sub006/internal/utils"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the relay config file")
	flag.Parse()

	bootLogger, _ := zap.NewDevelopment()
	config, err := cmd.ParseConfig(*configPath, bootLogger)
	if err != nil {
		bootLogger.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := utils.NewCustomLogger(utils.ParseLevel(config.Apps.LogLevel), false)
	if err != nil {
		bootLogger.Fatal("failed to create logger", zap.Error(err))
	}
	defer logger.Sync()

	relayApp := rest.NewRest(&rest.Config{
		Port:               config.Apps.Relay.Port,
		ProfileTTL:         config.Apps.Relay.ProfileTTL,
		ClientsStorageType: config.Storage.Clients.Type,
		RoomsStorageType:   config.Storage.Rooms.Type,
		CacheType:          config.Cache.Type,
		Logger:             logger,
	})

	appsManager := cmd.NewAppsManager(logger)

	appsManager.Register(cmd.RelayApp, relayApp)
	appsManager.RunAll()
	appsManager.WaitForShutdown()
}
