package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dunamismax/sitecms/internal/config"
	"github.com/dunamismax/sitecms/internal/logging"
	"github.com/dunamismax/sitecms/internal/storage"
	"github.com/dunamismax/sitecms/internal/store"
	"github.com/dunamismax/sitecms/internal/telemetry"
	"github.com/dunamismax/sitecms/internal/webhook"
	"github.com/dunamismax/sitecms/internal/worker"
)

func main() {
	cfg := config.Load()
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named("worker")

	if err := run(cfg, logger); err != nil {
		logger.Fatal("worker failed", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Telemetry, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown error", zap.Error(err))
		}
	}()

	documents, closeDocuments, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeDocuments(context.Background()); err != nil {
			logger.Warn("document store close error", zap.Error(err))
		}
	}()

	var objects *storage.Client
	if cfg.Storage.Enabled {
		objects, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return err
		}
		if err := objects.EnsureBucket(ctx); err != nil {
			return err
		}
	}

	webhookClient := webhook.NewClient(cfg.Webhook)
	if !webhookClient.Enabled() {
		logger.Warn("WEBHOOK_URL unset, submission notifications will be dropped")
	}

	var writer worker.ObjectWriter
	if objects != nil {
		writer = objects
	}

	srv, err := worker.NewServer(logger, cfg.Queue, cfg.Worker, webhookClient, writer, documents)
	if err != nil {
		return err
	}

	metricsServer := &http.Server{
		Addr:              cfg.Worker.MetricsAddr,
		Handler:           srv.MetricsHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("starting worker",
		zap.Int("concurrency", cfg.Worker.Concurrency),
		zap.String("queue", cfg.Queue.Name),
		zap.String("redis", cfg.Queue.RedisAddr),
		zap.String("metrics_addr", cfg.Worker.MetricsAddr),
		zap.Bool("storage", objects != nil),
	)

	if err := srv.Start(); err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	srv.Shutdown()
	return nil
}
