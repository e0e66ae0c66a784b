// Command dashboard serves the near-Earth asteroid dashboard over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/neo-explorer-service/internal/adapter/apod"
	httpadapter "github.com/couchcryptid/neo-explorer-service/internal/adapter/http"
	"github.com/couchcryptid/neo-explorer-service/internal/adapter/store"
	"github.com/couchcryptid/neo-explorer-service/internal/config"
	"github.com/couchcryptid/neo-explorer-service/internal/dashboard"
	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"github.com/couchcryptid/neo-explorer-service/internal/observability"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	st, err := store.Open(cfg, logger, metrics)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	// Initialize the fact of the day (feature-flagged via APOD_ENABLED / APOD_API_KEY).
	var facts domain.FactProvider
	if cfg.APODEnabled {
		client := apod.NewClient(cfg.APODAPIKey, cfg.APODBaseURL, cfg.APODTimeout, metrics, logger)
		facts = apod.NewCachedProvider(client, cfg.APODCacheTTL, metrics)
		metrics.FactEnabled.Set(1)
		logger.Info("fact of the day enabled", "cache_ttl", cfg.APODCacheTTL, "timeout", cfg.APODTimeout)
	} else {
		metrics.FactEnabled.Set(0)
		logger.Info("fact of the day disabled")
	}

	svc := dashboard.New(st, facts, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := svc.CheckReadiness(ctx); err != nil {
		logger.Warn("database not reachable yet", "driver", cfg.DBDriver, "error", err)
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := st.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
