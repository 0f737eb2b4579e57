package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"brewbook/internal/ancestry"
	"brewbook/internal/handlers"
	applog "brewbook/internal/log"
	"brewbook/internal/store"
	"brewbook/internal/undo"
)

// Config captures the runtime configuration for the HTTP service.
type Config struct {
	Addr     string
	Registry *store.Registry
	Stack    *undo.Stack
}

// Server wraps an http.Server exposing the recipe store, version graph,
// and undo stack as a JSON API.
type Server struct {
	config     Config
	httpServer *http.Server
}

// New builds a new Server using the provided configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("server requires a store registry")
	}
	if cfg.Stack == nil {
		cfg.Stack = undo.NewStack()
	}

	applog.Debug(context.Background(), "initializing server", "addr", cfg.Addr)

	versions := ancestry.NewService(cfg.Registry.Recipes)
	handlers.Configure(cfg.Registry, versions, cfg.Stack)

	return &Server{
		config: cfg,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           newRouter(),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Start begins serving HTTP traffic using the underlying http.Server.
func (s *Server) Start() error {
	applog.Debug(context.Background(), "server starting listener", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server with a timeout.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	applog.Debug(ctx, "server initiating graceful shutdown")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured HTTP handler, enabling integration tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
