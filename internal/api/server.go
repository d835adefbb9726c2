// Package api exposes run results over HTTP for operational review
// tooling.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/edge10/backend/internal/artifacts"
	"github.com/wonny/edge10/backend/internal/contracts"
	"github.com/wonny/edge10/backend/pkg/config"
	"github.com/wonny/edge10/backend/pkg/logger"
)

// Store is the run-history surface the API reads from.
type Store interface {
	LatestRun(ctx context.Context) (artifacts.RunRecord, bool, error)
	Candidates(ctx context.Context, runID int64, limit int) ([]artifacts.StoredCandidate, error)
	Exclusions(ctx context.Context, runID int64) ([]contracts.ExclusionRecord, error)
}

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

func NewServer(cfg *config.Config, store Store, log *logger.Logger) *Server {
	router := newRouter(store, log)
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		log: log.WithField("component", "api"),
	}
}

// Start blocks serving requests until the listener fails or Shutdown
// is called.
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("API server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
