package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/models"
	"github.com/ternarybob/aucsheet/internal/services/jobs"
)

// ExtractionHandler exposes the job lifecycle over HTTP
type ExtractionHandler struct {
	jobService *jobs.Service
	logger     arbor.ILogger
}

// NewExtractionHandler creates a new extraction handler
func NewExtractionHandler(jobService *jobs.Service, logger arbor.ILogger) *ExtractionHandler {
	return &ExtractionHandler{
		jobService: jobService,
		logger:     logger,
	}
}

type scheduleRequest struct {
	URL         string `json:"url"`
	Priority    int    `json:"priority"`
	RequestedBy string `json:"requested_by"`
}

// ScheduleHandler handles POST /api/extractions. A fresh submission
// answers 202; dedup short-circuits answer 200 with the existing job.
func (h *ExtractionHandler) ScheduleHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		WriteError(w, http.StatusBadRequest, "url is required")
		return
	}

	result, err := h.jobService.ScheduleExtraction(r.Context(), req.URL, req.Priority, req.RequestedBy)
	if err != nil {
		h.logger.Error().Err(err).Str("url", req.URL).Msg("Failed to schedule extraction")
		WriteError(w, http.StatusInternalServerError, "failed to schedule extraction")
		return
	}

	status := http.StatusAccepted
	if result.AlreadyExists || result.InProgress {
		status = http.StatusOK
	}
	WriteJSON(w, status, result)
}

// ListHandler handles GET /api/extractions?status=&limit=
func (h *ExtractionHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	status := models.JobStatus(r.URL.Query().Get("status"))
	limit := QueryInt(r, "limit", 50)

	summaries, err := h.jobService.ListJobs(r.Context(), status, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list jobs")
		WriteError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  summaries,
		"count": len(summaries),
	})
}

// GetHandler handles GET /api/extractions/{id}
func (h *ExtractionHandler) GetHandler(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.jobService.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			WriteError(w, http.StatusNotFound, "job not found")
			return
		}
		h.logger.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		WriteError(w, http.StatusInternalServerError, "failed to get job")
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// RetryHandler handles POST /api/extractions/{id}/retry
func (h *ExtractionHandler) RetryHandler(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.jobService.RetryJob(r.Context(), jobID)
	if err != nil {
		switch {
		case errors.Is(err, jobs.ErrJobNotFound):
			WriteError(w, http.StatusNotFound, "job not found")
		case errors.Is(err, jobs.ErrInvalidJobState):
			WriteError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error().Err(err).Str("job_id", jobID).Msg("Failed to retry job")
			WriteError(w, http.StatusInternalServerError, "failed to retry job")
		}
		return
	}
	WriteJSON(w, http.StatusOK, job)
}
