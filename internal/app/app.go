// Package app wires configuration, storage and the HTTP server together
// and runs the store until it is told to stop.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pthm/wcx/internal/config"
	"github.com/pthm/wcx/internal/mcpserver"
	"github.com/pthm/wcx/internal/server"
	"github.com/pthm/wcx/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *config.Config
	logger   *slog.Logger
	listener net.Listener
	version  string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *application) { a.config = cfg }
}

// WithLogger overrides the logger built from configuration.
func WithLogger(l *slog.Logger) Option {
	return func(a *application) { a.logger = l }
}

// WithListener serves on ln instead of the configured port.
func WithListener(ln net.Listener) Option {
	return func(a *application) { a.listener = ln }
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) { a.version = v }
}

func newApplication(opts []Option) (*application, error) {
	a := &application{version: "dev"}
	for _, opt := range opts {
		opt(a)
	}
	if a.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if a.logger == nil {
		a.logger = a.config.Log.NewLogger(os.Stdout)
	}
	return a, nil
}

func (a *application) openStore() (*storage.Store, error) {
	cfg := a.config.Storage
	store, err := storage.Open(cfg.Path, []byte(cfg.Key), storage.WithSensitive(cfg.Sensitive))
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return store, nil
}

// Run starts the HTTP store server and blocks until ctx is cancelled or
// the process receives SIGINT or SIGTERM.
func Run(ctx context.Context, opts ...Option) error {
	a, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := a.config
	logger := a.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.HTTP.Address()),
		slog.String("storage_path", cfg.Storage.Path),
		slog.Bool("sensitive", cfg.Storage.Sensitive),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.Log.Level.String()))

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	router := server.NewRouter(store, server.Options{
		AuthEnabled: cfg.Auth.Enabled(),
		Token:       cfg.Auth.Token,
		Logger:      logger,
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if a.listener != nil {
			logger.Info("Starting HTTP server", slog.String("address", a.listener.Addr().String()))
			err = httpServer.Serve(a.listener)
		} else {
			logger.Info("Starting HTTP server", slog.String("address", httpServer.Addr))
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Server stopped")
	return nil
}

// RunMCP serves the MCP tools over stdio against the configured store.
func RunMCP(_ context.Context, opts ...Option) error {
	a, err := newApplication(opts)
	if err != nil {
		return err
	}
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	a.logger.Info("Starting MCP server", slog.String("storage_path", a.config.Storage.Path))
	return mcpserver.New(store, a.version).ServeStdio()
}
