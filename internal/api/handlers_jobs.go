package api

import (
	"net/http"

	"github.com/dgallion1/pdfoutline/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	resp := map[string]any{"job": snap}
	if snap.Status == pipeline.StatusCompleted {
		resp["result_url"] = "/api/jobs/" + snap.ID + "/result"
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleJobResult serves the rendered outline of a completed job.
func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	if snap.Status != pipeline.StatusCompleted {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  "job has no result",
			"status": snap.Status,
		})
		return
	}
	w.Header().Set("Content-Type", snap.Format.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(job.Output())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orchestrator.Stats())
}
