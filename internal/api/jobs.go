package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"dealradar/internal/common"
	"dealradar/internal/jobs"
	"dealradar/internal/metrics"
)

// JobsHandler exposes the admin job endpoints.
type JobsHandler struct {
	backfill   *jobs.ReconcileBackfillJob
	metricsReg *metrics.MetricsRegistry
}

func NewJobsHandler(backfill *jobs.ReconcileBackfillJob, metricsReg *metrics.MetricsRegistry) *JobsHandler {
	return &JobsHandler{backfill: backfill, metricsReg: metricsReg}
}

// TriggerReconcile handles POST /api/v1/admin/jobs/reconcile
func (h *JobsHandler) TriggerReconcile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		// The run outlives the request; don't tie it to the request context.
		if err := h.backfill.Trigger(context.Background()); err != nil {
			if errors.Is(err, jobs.ErrJobAlreadyRunning) {
				common.RespondError(w, initTime, err, "", http.StatusConflict)
				return
			}
			common.RespondError(w, initTime, err, "Failed to trigger backfill")
			return
		}

		h.metricsReg.BackfillRunsTotal.Inc()
		common.RespondSuccess(w, initTime, "Backfill triggered", h.backfill.Status(), http.StatusAccepted)
	}
}

// GetJobStatus handles GET /api/v1/admin/jobs/status
func (h *JobsHandler) GetJobStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		common.RespondSuccess(w, initTime, "Job status", h.backfill.Status())
	}
}
