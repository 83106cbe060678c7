// Package server is the composition root: it opens the storage backend, builds
// the state containers on top of it and serves the JSON API.
//
// DEPENDENCY FLOW:
//
//	config.Config
//	  → kvstore.Backend (memory | sqlite.DB | postgres.DB)
//	  → kvstore.Store → repository/kv repos
//	  → state.Store (auth, contacts, ui containers)
//	  → handler.API mounted at /api
//
// The Server owns the backend and closes it when Run returns.
package server

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/contact-book/internal/auth"
	"github.com/sakif/contact-book/internal/config"
	"github.com/sakif/contact-book/internal/handler"
	"github.com/sakif/contact-book/internal/kvstore"
	"github.com/sakif/contact-book/internal/kvstore/postgres"
	"github.com/sakif/contact-book/internal/kvstore/sqlite"
	"github.com/sakif/contact-book/internal/middleware"
	"github.com/sakif/contact-book/internal/repository/kv"
	"github.com/sakif/contact-book/internal/state"
)

const shutdownTimeout = 30 * time.Second

type Server struct {
	router  *chi.Mux
	config  config.Config
	logger  *slog.Logger
	backend kvstore.Backend
	store   *state.Store
}

// New opens the configured backend, restores any persisted session and sets
// up the routes. On error nothing is left open.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("server: opening %s backend: %w", cfg.Backend, err)
	}
	return newWithBackend(ctx, cfg, backend, logger)
}

// newWithBackend builds the server over an open backend, closing it if
// setup fails.
func newWithBackend(ctx context.Context, cfg config.Config, backend kvstore.Backend, logger *slog.Logger) (*Server, error) {
	s, err := newServer(ctx, cfg, backend, logger)
	if err != nil {
		if cerr := backend.Close(); cerr != nil {
			logger.Warn("closing backend after failed setup",
				slog.String("backend", cfg.Backend),
				slog.String("error", cerr.Error()),
			)
		}
		return nil, err
	}
	return s, nil
}

func newServer(ctx context.Context, cfg config.Config, backend kvstore.Backend, logger *slog.Logger) (*Server, error) {
	secret := cfg.SessionSecret
	if secret == "" {
		secret = rand.Text()
		logger.Warn("SESSION_SECRET not set, using a random secret; sessions end on restart")
	}
	tokens, err := auth.NewTokenService(secret, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("server: creating token service: %w", err)
	}

	kvs := kvstore.New(backend, logger.With(slog.String("component", "kvstore")))
	store := state.New(state.Repositories{
		Users:    kv.NewUserRepo(kvs),
		Contacts: kv.NewContactRepo(kvs),
		Sessions: kv.NewSessionRepo(kvs),
	}, logger)

	// a failed restore is logged by the container and leaves it logged out
	_, _ = store.Auth.CheckAuthStatus(ctx)

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		backend: backend,
		store:   store,
	}
	s.setupRoutes(tokens)
	return s, nil
}

func openBackend(ctx context.Context, cfg config.Config) (kvstore.Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return kvstore.NewMemory(), nil
	case config.BackendSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		return sqlite.Open(cfg.SQLitePath)
	case config.BackendPostgres:
		return postgres.Open(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// setupRoutes installs the global middleware and mounts the API.
//
// MIDDLEWARE ORDER:
//  1. RequestID, read back by the logger
//  2. RealIP
//  3. Recoverer, turns panics into 500s
//  4. Logger
func (s *Server) setupRoutes(tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	api := handler.NewAPI(s.store, tokens, handler.Config{
		PageSize:      s.config.PageSize,
		SecureCookies: s.config.SecureCookies,
	}, s.logger)
	s.router.Mount("/api", api.Routes())
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store exposes the state containers the server dispatches to.
func (s *Server) Store() *state.Store {
	return s.store
}

// Close releases the backend. Run calls it on return.
func (s *Server) Close() error {
	return s.backend.Close()
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully and
// closes the backend.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()

	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", s.config.Addr),
			slog.String("backend", s.config.Backend),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listening: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	}
}
