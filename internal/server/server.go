// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the wiring layer for HTTP: it decides which URL maps to
// which handler, which middleware runs, and how the server starts and stops.
// The dependencies themselves (slot backend, store, directory) are built by
// bootstrap and handed in, so the CLI and the server share one wiring.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/devhost/internal/handler"
	"github.com/sakif/devhost/internal/metrics"
	"github.com/sakif/devhost/internal/middleware"
	"github.com/sakif/devhost/internal/service"
	"github.com/sakif/devhost/internal/tree"
)

// shutdownTimeout is how long in-flight requests get to finish after a
// shutdown signal.
const shutdownTimeout = 30 * time.Second

type Config struct {
	Port int
}

// Deps are the application services the routes are built on. Metrics may be
// nil, in which case /metrics is not registered.
type Deps struct {
	Directory *service.Directory
	Project   tree.Node
	Metrics   *metrics.Metrics
}

type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
}

func New(cfg Config, deps Deps, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}

	if err := s.setupRoutes(deps); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, for tests and for embedding in another server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTES:
// GET    /                              landing page (list, search, upload form)
// POST   /theme                         toggle dark/light theme cookie
// POST   /snippets                      upload form submit
// GET    /snippets/{id}                 detail page
// POST   /snippets/{id}/delete          delete from the detail page
// GET    /api/languages                 supported language tags
// GET    /api/snippets?q=               list, filtered by title or language
// POST   /api/snippets                  create
// GET    /api/snippets/{id}             get one
// DELETE /api/snippets/{id}             delete (204 even for unknown ids)
// GET    /api/snippets/{id}/download    code as a file attachment
// GET    /api/structure                 project tree as text
// GET    /api/structure.zip             project tree as a ZIP archive
// GET    /metrics                       Prometheus metrics
//
// Middleware runs in the order added: RequestID, RealIP, Logger, Recoverer.
// Logger sits outside Recoverer so a recovered panic is still logged as a 500.
func (s *Server) setupRoutes(deps Deps) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	pages, err := handler.NewPageHandler(deps.Directory, deps.Project, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}
	s.router.Get("/", pages.HandleIndex)
	s.router.Post("/theme", pages.HandleToggleTheme)
	s.router.Post("/snippets", pages.HandleUpload)
	s.router.Get("/snippets/{id}", pages.HandleDetail)
	s.router.Post("/snippets/{id}/delete", pages.HandleDelete)

	snippets := handler.NewSnippetHandler(deps.Directory, s.logger)
	structure := handler.NewStructureHandler(deps.Project, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/languages", snippets.HandleLanguages)
		r.Get("/snippets", snippets.HandleList)
		r.Post("/snippets", snippets.HandleCreate)
		r.Get("/snippets/{id}", snippets.HandleGetByID)
		r.Delete("/snippets/{id}", snippets.HandleDelete)
		r.Get("/snippets/{id}/download", snippets.HandleDownload)
		r.Get("/structure", structure.HandleText)
		r.Get("/structure.zip", structure.HandleZip)
	})

	if deps.Metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	return nil
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for up
// to shutdownTimeout.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
