// Package server exposes the progress tracker over a JSON HTTP API.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/tracker"
	"github.com/go-chi/chi/v5"
)

// Reports serves the storage-level reports only the Postgres store has.
type Reports interface {
	GetDataStats(ctx context.Context) (*storage.DataStats, error)
	QueryImportLogs(ctx context.Context, limit int) ([]storage.ImportLog, error)
	GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string) ([]storage.TrainingSummaryPeriod, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	tracker *tracker.Tracker
	alpha   *alpha.Provider
	reports Reports
	metrics *metrics.Manager
	log     *slog.Logger
	apiKey  string
	router  chi.Router
}

// New creates a new Server with all routes configured. reports may be nil,
// in which case the storage report routes answer 501.
func New(t *tracker.Tracker, alphaProvider *alpha.Provider, reports Reports, m *metrics.Manager, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		tracker: t,
		alpha:   alphaProvider,
		reports: reports,
		metrics: m,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(RequestMetrics(s.metrics))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Writes (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/workouts", s.handleFinishWorkout)
			r.Post("/import/alpha", s.handleAlphaImport)
			r.Post("/reload", s.handleReload)
			r.Post("/records/pending/ack", s.handleAcknowledgeRecords)
		})

		r.Get("/workouts", s.handleQueryWorkouts)
		r.Get("/records", s.handleRecords)
		r.Get("/records/pending", s.handlePendingRecords)
		r.Get("/stats", s.handleStats)
		r.Get("/suggestions", s.handleSuggestions)
		r.Get("/suggestions/{exerciseID}", s.handleSuggestion)

		r.Get("/storage/stats", s.handleStorageStats)
		r.Get("/storage/summary", s.handleTrainingSummary)
		r.Get("/import/logs", s.handleImportLogs)
	})
}

// Handle mounts an extra handler, e.g. the Prometheus exposition.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.router.Handle(pattern, h)
}
