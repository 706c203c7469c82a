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
	"github.com/rxlabel/dosage-api/config"
	"github.com/rxlabel/dosage-api/handlers"
	"github.com/rxlabel/dosage-api/logging"
	"github.com/rxlabel/dosage-api/monitor"
	"github.com/rxlabel/dosage-api/openfda"
	"github.com/rxlabel/dosage-api/server"

	_ "net/http/pprof"
)

func main() {
	// A missing .env is fine; configuration falls back to real environment
	// variables and defaults.
	if err := godotenv.Load(); err != nil {
		logging.Debug("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLogger("logs", cfg.LogLevel, cfg.LogRetentionWeeks, cfg.MaxLogFileSize)

	client := openfda.NewClient(cfg.FDABaseURL, cfg.FDATimeout)

	mon := monitor.New(client, cfg.ProbeInterval)
	if err := mon.Start(); err != nil {
		logging.Error("Failed to start source monitor", "error", err)
		os.Exit(1)
	}

	handler := handlers.NewHandler(client, mon)
	srv := server.NewServer(cfg, handler)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start the server in a goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error", "error", err)
	}

	mon.Stop()
	logging.DefaultLoggingService.Close()
}
