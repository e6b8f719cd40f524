package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/aucsheet/internal/app"
)

// Server serves the extraction API over plain net/http
type Server struct {
	app    *app.App
	addr   string
	router *http.ServeMux
	server *http.Server
}

// New creates the HTTP server for the given app
func New(application *app.App) *Server {
	s := &Server{
		app:  application,
		addr: fmt.Sprintf("%s:%d", application.Config.Server.Host, application.Config.Server.Port),
	}

	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start blocks serving requests until Shutdown
func (s *Server) Start() error {
	s.app.Logger.Info().
		Str("address", s.addr).
		Str("llm_provider", s.app.LLMProvider.Name()).
		Bool("scheduler", s.app.SchedulerService.IsRunning()).
		Msg("Extraction API starting")

	s.app.Logger.Info().
		Str("url", fmt.Sprintf("http://%s/api/extractions", s.addr)).
		Msg("Submit auction sheet URLs here")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("Shutting down HTTP server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.app.Logger.Info().Msg("HTTP server stopped")
	return nil
}
