package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mvgarcia/taproom/internal/cart"
	"github.com/mvgarcia/taproom/internal/favorites"
	"github.com/mvgarcia/taproom/internal/orders"
	"github.com/mvgarcia/taproom/internal/reviews"
	"github.com/mvgarcia/taproom/internal/tables"
	"github.com/mvgarcia/taproom/pkg/auth"
	"github.com/mvgarcia/taproom/pkg/brewapi"
	"github.com/mvgarcia/taproom/pkg/config"
	"github.com/mvgarcia/taproom/pkg/logger"
	"github.com/mvgarcia/taproom/pkg/metrics"
	"github.com/mvgarcia/taproom/pkg/redis"
)

func main() {
	offline := flag.String("offline", "", "base URL of a local dev server to target instead of the real backend")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "pos"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "pos",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tokenStore auth.TokenStore
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
		terminalID, _ := os.Hostname()
		if terminalID == "" {
			terminalID = "terminal"
		}
		tokenStore, err = auth.NewRedisStore(redisClient, terminalID)
		if err != nil {
			logg.Error(ctx, "failed to build redis token store", err)
			os.Exit(1)
		}
	} else {
		tokenStore, err = auth.NewFileStore(cfg.Session.TokenPath)
		if err != nil {
			logg.Error(ctx, "failed to build file token store", err)
			os.Exit(1)
		}
	}

	session, err := auth.NewSession(auth.SessionParams{
		Store:  tokenStore,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to build session", err)
		os.Exit(1)
	}

	baseURL := cfg.Backend.BaseURL
	if *offline != "" {
		baseURL = *offline
	}
	api, err := brewapi.New(baseURL,
		brewapi.WithTimeout(cfg.Backend.Timeout),
		brewapi.WithTokenSource(session),
		brewapi.WithUnauthorizedHook(session.HandleUnauthorized),
	)
	if err != nil {
		logg.Error(ctx, "failed to build api client", err)
		os.Exit(1)
	}
	session.Bind(api)

	registry := prometheus.NewRegistry()
	mirrorMetrics := metrics.NewMirrorMetrics(registry)

	cartSvc, err := cart.NewService(cart.ServiceParams{Backend: api, Logger: logg, Metrics: mirrorMetrics})
	if err != nil {
		logg.Error(ctx, "failed to build cart service", err)
		os.Exit(1)
	}
	favoritesSvc, err := favorites.NewService(favorites.ServiceParams{Backend: api, Logger: logg, Metrics: mirrorMetrics})
	if err != nil {
		logg.Error(ctx, "failed to build favorites service", err)
		os.Exit(1)
	}
	if _, err := reviews.NewService(reviews.ServiceParams{Backend: api, Logger: logg, Metrics: mirrorMetrics}); err != nil {
		logg.Error(ctx, "failed to build reviews service", err)
		os.Exit(1)
	}
	ordersSvc, err := orders.NewService(orders.ServiceParams{Backend: api, Logger: logg, Metrics: mirrorMetrics})
	if err != nil {
		logg.Error(ctx, "failed to build orders service", err)
		os.Exit(1)
	}
	tablesSvc, err := tables.NewService(tables.ServiceParams{Backend: api, Logger: logg, Metrics: mirrorMetrics})
	if err != nil {
		logg.Error(ctx, "failed to build tables service", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"backend": baseURL,
	})
	logg.Info(ctx, "pos terminal wired")

	if session.Authenticated(ctx) {
		if err := tablesSvc.Load(ctx); err != nil {
			logg.Warn(ctx, "initial table load failed, starting with an empty floor")
		}
		if err := ordersSvc.Load(ctx); err != nil {
			logg.Warn(ctx, "initial order load failed")
		}
		if err := cartSvc.Load(ctx); err != nil {
			logg.Warn(ctx, "initial cart load failed")
		}
		if err := favoritesSvc.Load(ctx); err != nil {
			logg.Warn(ctx, "initial favorites load failed")
		}
	} else {
		logg.Info(ctx, "no stored session, starting unauthenticated")
	}

	<-ctx.Done()
	logg.Info(context.Background(), "pos terminal stopped")
}
