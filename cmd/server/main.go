// Package main is the entry point for the EcoPath stock redistribution service.
// It detects stock anomalies across health facilities, recommends transfers
// from surplus to deficit facilities and applies approved transfers to the
// inventory ledger.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecopath/ecopath/internal/config"
	"github.com/ecopath/ecopath/internal/di"
	"github.com/ecopath/ecopath/internal/server"
	"github.com/ecopath/ecopath/pkg/logger"
)

// main wires the application and runs it until SIGINT or SIGTERM:
// 1. Loads configuration from the environment (.env supported)
// 2. Initializes logging
// 3. Wires databases, repositories, services and jobs
// 4. Starts the HTTP server and the scheduler
// 5. Shuts both down gracefully on signal
func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting EcoPath")

	container, _, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	srv := server.New(server.Config{
		Log:       log,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Container: container,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	container.Scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Waits for a running job (e.g. a backup) to finish
	container.Scheduler.Stop()

	log.Info().Msg("Server stopped")
}
