package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"go-data-processor/internal/ingest"
	"go-data-processor/internal/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "go-data-processor",
		"timestamp": time.Now().UTC(),
		"version":   serviceVersion,
	})
}

type submitJobRequest struct {
	Name          string                 `json:"name"`
	Configuration model.ProcessingConfig `json:"configuration"`
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	var req submitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	jobID, err := s.registry.Submit(req.Name, req.Configuration)
	if err != nil {
		s.log.WithField("error", err).Error("submit job")
		s.writeError(w, http.StatusInternalServerError, "failed to submit job")
		return
	}
	job, _ := s.registry.Get(jobID)

	s.log.WithField("job_id", jobID).Info("job submitted")
	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"job_id":     jobID,
		"status":     model.StatusPending,
		"created_at": job.CreatedAt,
	})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.registry.List())
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, ok := s.registry.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.registry.Cancel(id)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"job_id": id,
			"status": model.StatusCancelled,
		})
	case errors.Is(err, model.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "job not found")
	case errors.Is(err, model.ErrInvalidState):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, "failed to cancel job")
	}
}

type ingestRequest struct {
	Path     string `json:"path,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

func (s *Server) handleIngestSource(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	var (
		count int
		err   error
	)
	switch {
	case req.Path != "":
		count, err = ingest.FromFile(s.records, name, req.Path)
	case req.Endpoint != "":
		count, err = ingest.FromAPI(r.Context(), s.records, name, req.Endpoint)
	default:
		s.writeError(w, http.StatusBadRequest, "path or endpoint is required")
		return
	}

	switch {
	case err == nil:
		s.writeJSON(w, http.StatusCreated, map[string]interface{}{
			"source":  name,
			"records": count,
		})
	case errors.Is(err, model.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrParse):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrRemote):
		s.writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.log.WithField("error", err).Error("ingest source")
		s.writeError(w, http.StatusInternalServerError, "failed to ingest source")
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}
