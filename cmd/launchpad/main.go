// ====================================
// File: cmd/launchpad/main.go
// ====================================
package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-launchpad/internal/config"
	"github.com/rovshanmuradov/token-launchpad/internal/dex"
	"github.com/rovshanmuradov/token-launchpad/internal/events"
	"github.com/rovshanmuradov/token-launchpad/internal/launchpad"
	"github.com/rovshanmuradov/token-launchpad/internal/logger"
	"github.com/rovshanmuradov/token-launchpad/internal/service"
	"github.com/rovshanmuradov/token-launchpad/internal/storage"
	"github.com/rovshanmuradov/token-launchpad/internal/storage/memory"
	"github.com/rovshanmuradov/token-launchpad/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		zap.NewExample().Fatal("Failed to load configuration", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		LogFile:     logFileOrDefault(cfg),
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	if err != nil {
		zap.NewExample().Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting token launchpad")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store storage.Store
	if cfg.UseMemoryStore {
		store = memory.NewStore()
		log.Info("Using in-memory store")
	} else {
		store, err = postgres.NewStore(cfg.PostgresURL, log.Logger)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := store.RunMigrations(); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	eventBus := events.NewBus(log.Logger, cfg.EventBufferSize)

	registry := launchpad.NewRegistry(&launchpad.Config{
		Logger: log.Logger,
		Bus:    eventBus,
		Store:  store,
	})
	if err := registry.Restore(ctx); err != nil {
		log.Fatal("Failed to restore registry state", zap.Error(err))
	}

	router := dex.NewPoolRouter(cfg.RouterName, log.Logger)
	registry.RegisterRouter(dex.NewLiquidityRouterAdapter(router, log.Logger))

	shutdown := service.NewShutdownHandler(log.Logger, 0)
	shutdown.AddFunc("store", store.Close)
	shutdown.AddFunc("event_bus", func() error {
		return eventBus.Shutdown(context.Background())
	})

	runner := service.NewRunner(cfg, registry, eventBus, log.Logger)
	if err := runner.Run(ctx); err != nil {
		log.Error("Launchpad execution error", zap.Error(err))
		shutdown.Shutdown(context.Background())
		runner.Shutdown()
		os.Exit(1)
	}

	shutdown.Shutdown(context.Background())
	runner.Shutdown()
}

func logFileOrDefault(cfg *config.Config) string {
	if cfg.LogFile != "" {
		return cfg.LogFile
	}
	return logger.DefaultConfig().LogFile
}
