package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/common"
	"github.com/ternarybob/aucsheet/internal/interfaces"
)

// APIHandler serves the service-level endpoints
type APIHandler struct {
	storage   interfaces.StorageManager
	logger    arbor.ILogger
	startedAt time.Time
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(storage interfaces.StorageManager, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		storage:   storage,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// VersionHandler handles GET /api/version
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version": common.GetVersion(),
		"build":   common.Build,
		"commit":  common.GitCommit,
	})
}

// HealthHandler handles GET /api/health with job queue counts
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	counts, err := h.storage.JobStorage().CountByStatus(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Health check storage query failed")
		WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unhealthy",
			"error":  "storage unavailable",
		})
		return
	}

	sheets, err := h.storage.SheetStorage().CountSheets(r.Context())
	if err != nil {
		sheets = -1
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
		"jobs":    counts,
		"sheets":  sheets,
		"version": common.GetVersion(),
	})
}

// NotFoundHandler handles unmatched /api/ routes
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "endpoint not found: "+r.URL.Path)
}
