// Package server provides HTTP server initialization and management.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rajcreationz/livesite/internal/application/container"
	"github.com/rajcreationz/livesite/internal/presentation/http/routes"
	"github.com/rajcreationz/livesite/pkg/config"
)

// Server owns the HTTP listener for the site and its API.
type Server struct {
	httpServer *http.Server
	container  *container.Container
}

// New builds the router from container and binds it to port. There is no
// write timeout: status websockets and the SSE log stream stay open.
func New(port string, container *container.Container) *Server {
	router := routes.SetupRoutes(container)

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       config.ServerReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       config.ServerIdleTimeout,
		MaxHeaderBytes:    1 << 20,
		ErrorLog:          slog.NewLogLogger(container.Logger.System().Handler(), slog.LevelWarn),
	}

	return &Server{
		httpServer: httpServer,
		container:  container,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start blocks serving requests until Stop is called.
func (s *Server) Start() error {
	s.container.Logger.System().Info("Starting HTTP server", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop drains open requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.container.Logger.Shutdown().Info("Shutting down HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.Shutdown(ctx)
}
