// Package api exposes the engine over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/phishguard/risk-engine/internal/application"
	"github.com/phishguard/risk-engine/internal/domain"
)

// maxBodyBytes caps request bodies; a URL plus comment never needs more
const maxBodyBytes = 64 * 1024

// Engine is the subset of the application engine served by the API
type Engine interface {
	Analyze(ctx context.Context, rawURL string) (*domain.AnalysisResult, error)
	Block(ctx context.Context, domainName string) error
	Trust(ctx context.Context, domainName string) error
	Unblock(ctx context.Context, domainName string) error
	Untrust(ctx context.Context, domainName string) error
	Report(ctx context.Context, result *domain.AnalysisResult, comment string) (*domain.Report, error)
	Statistics() domain.Statistics
	ResetStatistics(ctx context.Context)
	Refresh(ctx context.Context) (domain.UpdateSummary, error)
	Lists() application.ListSummary
}

// Server holds the HTTP handlers
type Server struct {
	engine  Engine
	metrics http.Handler
	logger  *logrus.Logger
}

// NewServer creates the API server. metricsHandler serves /metrics and may be nil.
func NewServer(engine Engine, metricsHandler http.Handler, logger *logrus.Logger) *Server {
	return &Server{engine: engine, metrics: metricsHandler, logger: logger}
}

// Router builds the route tree
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { writeText(w, http.StatusOK, "ok\n") })
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.analyze)

		r.Post("/domains/{domain}/block", s.changeList(s.engine.Block))
		r.Delete("/domains/{domain}/block", s.changeList(s.engine.Unblock))
		r.Post("/domains/{domain}/trust", s.changeList(s.engine.Trust))
		r.Delete("/domains/{domain}/trust", s.changeList(s.engine.Untrust))

		r.Post("/reports", s.report)

		r.Get("/statistics", s.statistics)
		r.Delete("/statistics", s.resetStatistics)

		r.Post("/intelligence/refresh", s.refreshIntelligence)
		r.Get("/lists", s.lists)
	})

	return r
}
