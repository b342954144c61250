// Package main is the entry point for the fakeloc daemon.
// Its sole responsibility is config, logging and signal handling;
// all wiring lives in internal/app.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tsundberg/fakeloc/internal/app"
	"github.com/tsundberg/fakeloc/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use the default logger before the configured one exists.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// log/slog with a JSON handler writes machine-readable output
	// suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// SIGINT/SIGTERM cancel the context; app.Run turns that into a
	// graceful shutdown (server drained, mock mode disabled, writes flushed).
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		logger.Error("daemon error", "error", err)
		os.Exit(1)
	}
}
