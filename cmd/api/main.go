package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dunamismax/sitecms/internal/api"
	"github.com/dunamismax/sitecms/internal/auth"
	"github.com/dunamismax/sitecms/internal/config"
	"github.com/dunamismax/sitecms/internal/imaging"
	"github.com/dunamismax/sitecms/internal/logging"
	"github.com/dunamismax/sitecms/internal/queue"
	"github.com/dunamismax/sitecms/internal/ratelimit"
	"github.com/dunamismax/sitecms/internal/storage"
	"github.com/dunamismax/sitecms/internal/store"
	"github.com/dunamismax/sitecms/internal/telemetry"
)

func main() {
	cfg := config.Load()
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named("api")

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api failed", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Telemetry, logger)
	if err != nil {
		return err
	}
	defer shutdownWithTimeout(logger, "tracing", shutdownTracing)

	if err := imaging.Startup(); err != nil {
		return err
	}
	defer imaging.Shutdown()
	logger.Info("image backend ready", zap.String("backend", imaging.Backend()))

	documents, closeDocuments, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer shutdownWithTimeout(logger, "document store", closeDocuments)

	if cfg.Auth.JWTSecret == "" || cfg.Auth.AdminPasswordHash == "" {
		logger.Warn("JWT_SECRET or ADMIN_PASSWORD_HASH unset, admin routes will reject every request")
	}

	deps := api.Deps{
		Logger:    logger,
		API:       cfg.API,
		Image:     cfg.Image,
		Documents: documents,
		Auth:      auth.New(cfg.Auth),
	}

	if cfg.Queue.Enabled {
		queueClient := queue.NewClient(cfg.Queue.RedisClientOpt(), cfg.Queue.Name)
		defer func() {
			if err := queueClient.Close(); err != nil {
				logger.Warn("queue client close error", zap.Error(err))
			}
		}()
		deps.Queue = queueClient
	}

	if cfg.Storage.Enabled {
		objects, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return err
		}
		deps.CVLinks = objects
	}

	if cfg.RateLimit.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Queue.RedisAddr,
			Password: cfg.Queue.RedisPassword,
			DB:       cfg.Queue.RedisDB,
		})
		defer redisClient.Close()

		limiter, err := ratelimit.NewRedisTokenBucket(redisClient,
			ratelimit.Policy{Capacity: cfg.RateLimit.Capacity, Window: cfg.RateLimit.Window},
			ratelimit.WithRoute(api.LoginRoute, ratelimit.Policy{Capacity: cfg.RateLimit.LoginCapacity, Window: cfg.RateLimit.LoginWindow}),
		)
		if err != nil {
			return err
		}
		deps.RateLimiter = limiter
	}

	app, err := api.NewServer(deps)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", cfg.API.Addr),
			zap.String("db_driver", cfg.Database.Driver),
			zap.Bool("queue", cfg.Queue.Enabled),
			zap.Bool("storage", cfg.Storage.Enabled),
			zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	return nil
}

func shutdownWithTimeout(logger *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Warn("shutdown error", zap.String("component", name), zap.Error(err))
	}
}
