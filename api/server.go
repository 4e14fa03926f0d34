package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tabacweb/tabac-backend/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// Server wraps the HTTP listener with graceful shutdown.
type Server struct {
	srv  *http.Server
	logg *logger.Logger
}

// NewServer builds a server for the given address and handler.
func NewServer(addr string, handler http.Handler, logg *logger.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logg: logg,
	}
}

// Run serves until the context is cancelled, then drains in-flight
// requests before returning.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logg.Info(context.Background(), "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
