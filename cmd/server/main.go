// Package main is the entry point for the filevault server.
//
// Its job is deliberately small:
//  1. Load .env (development convenience; no-op when the file is absent)
//  2. Build the config struct and the logger
//  3. Create the data directory for the SQLite file
//  4. Hand everything to internal/server and block until shutdown
//
// All actual logic lives in the imported packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sakif/filevault/internal/config"
	"github.com/sakif/filevault/internal/server"
)

func main() {
	// A missing .env is fine — production supplies real env vars.
	_ = godotenv.Load()

	cfg := config.Load()

	level := slog.LevelInfo
	if cfg.Env == "development" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create data directory", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
