package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server owns the listening webhook server.
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// NewServer wraps handler in an http.Server bound to addr.
func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

// Start serves until Stop is called. It returns nil after a graceful stop.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server, waiting for in-flight updates.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
