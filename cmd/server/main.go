// Package main is the entry point for the flip analysis API server.
//
// Startup order:
//  1. Load configuration from the environment (.env honoured)
//  2. Wire databases, repositories, services and jobs via the DI container
//  3. Start the job scheduler and the HTTP server
//  4. Wait for SIGINT/SIGTERM and shut down gracefully
//
// Two SQLite databases live under FLIP_DATA_DIR:
//   - analysis.db: properties, workspace settings, rates, live inputs and payments
//   - ledger.db: append-only analysis snapshots
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/widia-io/widia-flip-sub001/internal/config"
	"github.com/widia-io/widia-flip-sub001/internal/di"
	"github.com/widia-io/widia-flip-sub001/internal/server"
	"github.com/widia-io/widia-flip-sub001/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting flip analysis server")

	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	if !cfg.Backup.Enabled() {
		log.Warn().Msg("R2 credentials not configured - backups will only be kept locally")
	}
	log.Debug().
		Str("maintenance", jobs.Maintenance.Name()).
		Str("integrity", jobs.SnapshotIntegrity.Name()).
		Str("backup", jobs.Backup.Name()).
		Msg("Jobs registered")

	container.Scheduler.Start()

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	container.Scheduler.Stop()
	log.Info().Msg("Server stopped")
}
