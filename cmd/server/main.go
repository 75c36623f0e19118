// Package main is the entry point for the devhost web server.
//
// The main package stays minimal. Its job is to:
// 1. Read configuration (defaults, config file, DEVHOST_* env vars)
// 2. Create dependencies (logger, slot backend, store, directory)
// 3. Start the server
//
// All actual logic lives in imported packages (internal/bootstrap,
// internal/server, internal/handler, ...). The CLI in cmd/devhost builds the
// same dependencies through internal/bootstrap.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"github.com/sakif/devhost/internal/bootstrap"
	"github.com/sakif/devhost/internal/config"
	"github.com/sakif/devhost/internal/server"
)

func main() {
	cfgFile := flag.String("config", "", "config file (default is $HOME/.config/devhost/config.toml)")
	flag.Parse()

	// === 1. READ CONFIGURATION ===
	// A missing default config file is fine; every key has a default and can
	// be overridden from the environment, e.g. DEVHOST_SERVER_PORT=9000.
	cfg, err := config.Load(*cfgFile)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	logger := bootstrap.NewLogger(os.Stdout, cfg)
	if cfg.File != "" {
		logger.Info("using config file", slog.String("path", cfg.File))
	}

	// === 3. WIRE DEPENDENCIES ===
	// Opens the slot backend (file, sqlite, dynamodb or memory) and builds the
	// store and directory on top of it.
	app, err := bootstrap.New(context.Background(), cfg, logger, afero.NewOsFs())
	if err != nil {
		logger.Error("failed to initialize", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer app.Close()

	logger.Info("storage ready",
		slog.String("backend", cfg.Storage.Backend),
		slog.String("slot", cfg.Storage.Slot),
		slog.Duration("simulated_latency", cfg.SimulatedLatency()),
	)

	// === 4. CREATE AND START THE SERVER ===
	srv, err := server.New(server.Config{Port: cfg.Server.Port}, server.Deps{
		Directory: app.Directory,
		Project:   app.Project,
		Metrics:   app.Metrics,
	}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		app.Close()
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		app.Close()
		os.Exit(1)
	}
}
