package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mvgarcia/taproom/internal/devserver"
	"github.com/mvgarcia/taproom/internal/localstore"
	"github.com/mvgarcia/taproom/internal/tables"
	"github.com/mvgarcia/taproom/pkg/config"
	"github.com/mvgarcia/taproom/pkg/db"
	"github.com/mvgarcia/taproom/pkg/logger"
	"github.com/mvgarcia/taproom/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "devserver"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "devserver",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.LocalStore, logg)
	if err != nil {
		logg.Error(ctx, "failed to open local store", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing local store", err)
		}
	}()

	store, err := localstore.NewStore(localstore.StoreParams{
		Client:        dbClient,
		Logger:        logg,
		DefaultTables: cfg.LocalStore.DefaultTables,
	})
	if err != nil {
		logg.Error(ctx, "failed to build local store", err)
		os.Exit(1)
	}
	if cfg.LocalStore.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			logg.Error(ctx, "failed to migrate local store", err)
			os.Exit(1)
		}
	}

	local, err := tables.NewLocalSequencer(store)
	if err != nil {
		logg.Error(ctx, "failed to build local sequencer", err)
		os.Exit(1)
	}

	var sequencer tables.Sequencer = local
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()

		primary, err := tables.NewRedisSequencer(redisClient)
		if err != nil {
			logg.Error(ctx, "failed to build redis sequencer", err)
			os.Exit(1)
		}
		sequencer, err = tables.NewFallbackSequencer(primary, local, logg)
		if err != nil {
			logg.Error(ctx, "failed to build fallback sequencer", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()

	server, err := devserver.NewServer(devserver.ServerParams{
		Store:     store,
		Sequencer: sequencer,
		Logger:    logg,
		Config:    cfg.DevServer,
		Registry:  registry,
	})
	if err != nil {
		logg.Error(ctx, "failed to build dev server", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"port": cfg.DevServer.Port,
	})
	logg.Info(ctx, "starting dev server")

	if err := server.Serve(ctx); err != nil {
		logg.Error(ctx, "dev server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "dev server stopped")
}
