// Package server wraps the HTTP listener the USSD gateway and the menu
// builder API are served from.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/AtRiskMedia/ussd-go/internal/application/container"
	"github.com/AtRiskMedia/ussd-go/internal/presentation/http/routes"
	"github.com/AtRiskMedia/ussd-go/pkg/config"
)

// Server owns the http.Server serving the gateway, admin, and simulator
// routes.
type Server struct {
	httpServer *http.Server
	container  *container.Container
}

// New builds the server over the container's route table with the
// configured timeouts.
func New(port string, container *container.Container) *Server {
	router := routes.SetupRoutes(container)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	return &Server{
		httpServer: httpServer,
		container:  container,
	}
}

// Start begins accepting gateway exchanges. It blocks until the listener
// closes; a graceful shutdown is not an error.
func (s *Server) Start() error {
	s.container.Logger.System().Info("USSD gateway listening", "address", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("gateway listener failed: %w", err)
	}

	return nil
}

// Stop drains in-flight exchanges and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	s.container.Logger.System().Info("USSD gateway shutting down")
	return s.httpServer.Shutdown(ctx)
}
