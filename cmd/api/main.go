package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/frozify/storefront/api/controllers"
	"github.com/frozify/storefront/api/routes"
	"github.com/frozify/storefront/internal/auth"
	"github.com/frozify/storefront/internal/session"
	"github.com/frozify/storefront/pkg/config"
	"github.com/frozify/storefront/pkg/db"
	"github.com/frozify/storefront/pkg/instance"
	"github.com/frozify/storefront/pkg/logger"
	"github.com/frozify/storefront/pkg/metrics"
	"github.com/frozify/storefront/pkg/migrate"
	"github.com/frozify/storefront/pkg/redis"
	"github.com/frozify/storefront/pkg/storage"
	"github.com/frozify/storefront/pkg/storefront"
)

const (
	shutdownTimeout = 15 * time.Second
	purgeInterval   = time.Hour
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	pingers := map[string]controllers.Pinger{}

	var dbClient *db.Client
	if cfg.Storage.Backend == config.StorageBackendSQL {
		dbClient, err = db.New(ctx, cfg.DB, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, dbClient.Close())
		}()
		if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
			return err
		}
		pingers["database"] = dbClient
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		pingers["redis"] = redisClient
	}

	store, err := storage.Open(cfg.Storage, redisClient, dbClient)
	if err != nil {
		return err
	}
	if sqlStore, ok := store.(*storage.SQL); ok {
		go purgeExpired(ctx, sqlStore, logg)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewStorefrontMetrics(registry)

	api, err := storefront.NewClient(cfg.Storefront.BaseURL,
		storefront.WithTimeout(cfg.Storefront.Timeout),
		storefront.WithRecorder(recorder),
		storefront.WithBreaker(storefront.BreakerSettings{
			MaxRequests:  cfg.Storefront.BreakerMaxRequests,
			Interval:     cfg.Storefront.BreakerInterval,
			Timeout:      cfg.Storefront.BreakerTimeout,
			FailureCount: cfg.Storefront.BreakerFailureCount,
		}),
	)
	if err != nil {
		return err
	}

	authService, err := auth.NewService(api)
	if err != nil {
		return err
	}

	sessions, err := session.NewRegistry(session.RegistryParams{
		Storage:   store,
		API:       api,
		Recipient: cfg.Handoff.Recipient,
		Logger:    logg,
		Recorder:  recorder,
		Size:      cfg.Sessions.CacheSize,
		IdleTTL:   cfg.Sessions.IdleTTL,
	})
	if err != nil {
		return err
	}

	deps := routes.Dependencies{
		Sessions:    sessions,
		Storefront:  api,
		AuthService: authService,
		Redis:       redisClient,
		Pingers:     pingers,
		Metrics:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"storage":  cfg.Storage.Backend,
		"instance": instance.GetID(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return multierr.Append(server.Shutdown(shutdownCtx), <-serveErr)
}

func purgeExpired(ctx context.Context, store *storage.SQL, logg *logger.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.PurgeExpired(ctx)
			if err != nil {
				logg.Error(ctx, "failed to purge expired storage entries", err)
				continue
			}
			if removed > 0 {
				logg.Info(logg.WithField(ctx, "removed", removed), "purged expired storage entries")
			}
		}
	}
}
