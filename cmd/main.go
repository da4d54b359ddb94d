// Command oche serves the dart game API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/okian/oche/internal/adapters/http/api"
	"github.com/okian/oche/internal/adapters/http/swagger"
	app "github.com/okian/oche/internal/app"
	"github.com/okian/oche/internal/config"
	"github.com/okian/oche/pkg/logger"
	"github.com/okian/oche/pkg/metrics"
)

// HTTP server timeout constants. There is no write timeout: game streams
// are long lived and manage their own write deadlines.
const (
	readTimeout           = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to set log level: %w", err)
	}
	log := logger.Get()

	svc, err := newService(cfg, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, svc),
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case <-ctx.Done():
	case err := <-errs:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newService builds the game service from configuration.
func newService(cfg *config.Config, log logger.Logger) (*app.Service, error) {
	variant, err := cfg.Variant()
	if err != nil {
		return nil, err
	}
	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithShardCount(cfg.ShardCount),
		app.WithMaxGames(cfg.MaxGames),
		app.WithTargetScore(cfg.TargetScore),
		app.WithThrowsPerTurn(cfg.ThrowsPerTurn),
		app.WithDefaultVariant(variant),
		app.WithAimOptions(cfg.AimOptions()...),
		app.WithStreamBuffer(cfg.StreamBuffer),
	), nil
}

// newRouter registers the docs and API routes.
func newRouter(ctx context.Context, svc api.Dependencies) *httprouter.Router {
	router := httprouter.New()
	swagger.Register(ctx, router)
	api.NewServer(svc).Register(ctx, router)
	return router
}

// startSystemMetricsUpdater refreshes the runtime gauges until ctx ends.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	metrics.CollectSystem()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.CollectSystem()
		}
	}
}
