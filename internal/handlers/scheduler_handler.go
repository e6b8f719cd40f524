package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/interfaces"
	"github.com/ternarybob/aucsheet/internal/services/jobs"
)

// SchedulerHandler exposes scheduled sweep status and manual triggers
type SchedulerHandler struct {
	scheduler  interfaces.SchedulerService
	jobService *jobs.Service
	logger     arbor.ILogger
}

// NewSchedulerHandler creates a new scheduler handler
func NewSchedulerHandler(scheduler interfaces.SchedulerService, jobService *jobs.Service, logger arbor.ILogger) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler:  scheduler,
		jobService: jobService,
		logger:     logger,
	}
}

// StatusHandler handles GET /api/scheduler
func (h *SchedulerHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	statuses := h.scheduler.GetAllJobStatuses()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"running": h.scheduler.IsRunning(),
		"jobs":    statuses,
	})
}

// TriggerHandler handles POST /api/scheduler/{sweep}/trigger, running
// one of the maintenance sweeps immediately.
func (h *SchedulerHandler) TriggerHandler(w http.ResponseWriter, r *http.Request, sweep string) {
	ctx := r.Context()

	switch sweep {
	case "retry":
		count, err := h.jobService.RetrySweep(ctx)
		if err != nil {
			h.logger.Error().Err(err).Msg("Retry sweep failed")
			WriteError(w, http.StatusInternalServerError, "retry sweep failed")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"sweep": "retry", "requeued": count})
	case "cleanup":
		count, err := h.jobService.CleanupSweep(ctx)
		if err != nil {
			h.logger.Error().Err(err).Msg("Cleanup sweep failed")
			WriteError(w, http.StatusInternalServerError, "cleanup sweep failed")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"sweep": "cleanup", "deleted": count})
	case "drain":
		count, err := h.jobService.DrainQueue(ctx)
		if err != nil {
			h.logger.Error().Err(err).Msg("Queue drain failed")
			WriteError(w, http.StatusInternalServerError, "queue drain failed")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"sweep": "drain", "dispatched": count})
	default:
		WriteError(w, http.StatusNotFound, "unknown sweep: "+sweep)
	}
}

// EnableHandler handles POST /api/scheduler/{name}/enable
func (h *SchedulerHandler) EnableHandler(w http.ResponseWriter, r *http.Request, name string) {
	if err := h.scheduler.EnableJob(name); err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	WriteSuccess(w, "scheduled job enabled")
}

// DisableHandler handles POST /api/scheduler/{name}/disable
func (h *SchedulerHandler) DisableHandler(w http.ResponseWriter, r *http.Request, name string) {
	if err := h.scheduler.DisableJob(name); err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	WriteSuccess(w, "scheduled job disabled")
}
