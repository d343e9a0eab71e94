package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/park-visits-dashboard/internal/adapter/http"
	"github.com/couchcryptid/park-visits-dashboard/internal/adapter/watch"
	"github.com/couchcryptid/park-visits-dashboard/internal/config"
	"github.com/couchcryptid/park-visits-dashboard/internal/dashboard"
	"github.com/couchcryptid/park-visits-dashboard/internal/loader"
	"github.com/couchcryptid/park-visits-dashboard/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ld := loader.New(cfg, logger, metrics)
	ctrl := dashboard.New(ld, cfg.HeatmapOptions(), logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, ctrl, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Initial load. The page shows a loading state until it completes and an
	// error state if it fails; POST /api/reload retries.
	go func() {
		if err := ctrl.Refresh(ctx, dashboard.TriggerStartup); err != nil {
			logger.Error("initial data load failed", "error", err)
		}
	}()

	// Reload on local data file changes (feature-flagged via DATA_WATCH).
	if cfg.WatchEnabled {
		startWatcher(ctx, cfg, ld, ctrl, logger)
	} else {
		logger.Info("data file watching disabled")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

func startWatcher(ctx context.Context, cfg *config.Config, ld *loader.Loader, ctrl *dashboard.Controller, logger *slog.Logger) {
	paths := ld.LocalSources()
	if len(paths) == 0 {
		logger.Warn("data file watching enabled but both sources are remote")
		return
	}
	w, err := watch.New(paths, cfg.WatchDebounce, ctrl, logger)
	if err != nil {
		logger.Error("failed to start data file watcher", "error", err)
		return
	}
	go func() {
		if err := w.Run(ctx); err != nil {
			logger.Error("data file watcher error", "error", err)
		}
	}()
}
