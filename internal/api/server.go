// Package api exposes the service surface over HTTP: health, job
// submission and queries, source ingestion and the metrics snapshot.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"go-data-processor/internal/engine"
	"go-data-processor/internal/store"
)

const serviceVersion = "1.0.0"

// Server bundles the handler dependencies.
type Server struct {
	registry *store.JobRegistry
	records  *store.RecordStore
	metrics  *engine.Metrics
	log      *logrus.Entry
}

func NewServer(registry *store.JobRegistry, records *store.RecordStore, metrics *engine.Metrics) *Server {
	return &Server{
		registry: registry,
		records:  records,
		metrics:  metrics,
		log:      logrus.WithField("component", "api"),
	}
}

// Routes builds the HTTP router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/jobs", func(r chi.Router) {
		r.Post("/", s.handleSubmitJob)
		r.Get("/", s.handleListJobs)
		r.Get("/{id}", s.handleGetJob)
		r.Post("/{id}/cancel", s.handleCancelJob)
	})
	r.Post("/sources/{name}", s.handleIngestSource)
	r.Get("/metrics", s.handleMetrics)

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithField("error", err).Error("encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{"error": message})
}
