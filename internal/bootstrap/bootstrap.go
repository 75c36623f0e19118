// Package bootstrap wires the application from a config.Config. Both the HTTP
// server and the CLI build their dependencies here, so they read and write the
// same slot in the same way.
//
//	config -> slot backend -> store -> (metrics) -> directory
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/sakif/devhost/internal/config"
	"github.com/sakif/devhost/internal/metrics"
	"github.com/sakif/devhost/internal/repository"
	"github.com/sakif/devhost/internal/repository/dynamo"
	"github.com/sakif/devhost/internal/repository/filestore"
	"github.com/sakif/devhost/internal/repository/memory"
	sqliteRepo "github.com/sakif/devhost/internal/repository/sqlite"
	"github.com/sakif/devhost/internal/service"
	"github.com/sakif/devhost/internal/store"
	"github.com/sakif/devhost/internal/tree"
)

// App holds the wired dependencies. Close releases the slot backend.
type App struct {
	Config     config.Config
	Logger     *slog.Logger
	Fs         afero.Fs
	Repository store.Repository
	Directory  *service.Directory
	Metrics    *metrics.Metrics // nil when metrics are disabled
	Project    tree.Node

	closers []func() error
}

// Option adjusts App construction.
type Option func(*options)

type options struct {
	dynamoAPI dynamo.API
	delay     store.Delay
}

// WithDynamoAPI replaces the DynamoDB client, for tests and DynamoDB Local.
func WithDynamoAPI(api dynamo.API) Option {
	return func(o *options) { o.dynamoAPI = api }
}

// WithDelay overrides the latency derived from store.simulated_latency_ms.
func WithDelay(d store.Delay) Option {
	return func(o *options) { o.delay = d }
}

// NewLogger builds the text logger used by both binaries.
func NewLogger(w io.Writer, cfg config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger, fsys afero.Fs, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{Config: cfg, Logger: logger, Fs: fsys}

	slot, err := app.openSlot(ctx, o)
	if err != nil {
		return nil, err
	}

	delay := o.delay
	if delay == nil {
		delay = store.Fixed(cfg.SimulatedLatency())
	}
	var repo store.Repository = store.New(slot, logger,
		store.WithDelay(delay),
		store.FailOnCorrupt(cfg.Store.FailOnCorrupt),
	)
	if cfg.Metrics.Enabled {
		app.Metrics = metrics.New()
		repo = metrics.NewRepository(repo, app.Metrics)
	}
	app.Repository = repo
	app.Directory = service.NewDirectory(repo, logger)

	project, err := tree.Load(fsys, cfg.Structure.File)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("bootstrap: loading project structure: %w", err)
	}
	app.Project = project

	return app, nil
}

func (a *App) openSlot(ctx context.Context, o options) (repository.Slot, error) {
	cfg := a.Config.Storage
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.New(), nil

	case config.BackendFile:
		return filestore.New(a.Fs, cfg.Dir, cfg.Slot), nil

	case config.BackendSQLite:
		// The sqlite driver opens the path on the OS filesystem, not on a.Fs.
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("bootstrap: creating database directory: %w", err)
			}
		}
		db, err := sqliteRepo.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return db.Slot(cfg.Slot), nil

	case config.BackendDynamoDB:
		api := o.dynamoAPI
		if api == nil {
			client, err := dynamo.NewClient(ctx, dynamo.Config{
				Region:   cfg.DynamoDB.Region,
				Endpoint: cfg.DynamoDB.Endpoint,
				Table:    cfg.DynamoDB.Table,
			})
			if err != nil {
				return nil, fmt.Errorf("bootstrap: %w", err)
			}
			api = client
		}
		if err := dynamo.EnsureTable(ctx, api, cfg.DynamoDB.Table); err != nil {
			return nil, fmt.Errorf("bootstrap: %w", err)
		}
		return dynamo.New(api, cfg.DynamoDB.Table, cfg.Slot), nil

	default:
		return nil, fmt.Errorf("bootstrap: unknown storage backend %q", cfg.Backend)
	}
}

// Close releases backend resources. It is safe to call more than once.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}
