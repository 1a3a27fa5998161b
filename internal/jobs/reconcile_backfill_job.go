package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"dealradar/internal/logging"
	"dealradar/internal/metrics"
	"dealradar/internal/models/dtos"
	"dealradar/internal/models/entities"
	"dealradar/internal/services"

	"golang.org/x/sync/errgroup"
)

// ErrJobAlreadyRunning is returned when a trigger arrives while a
// backfill is in flight. Only one run may execute at a time.
var ErrJobAlreadyRunning = errors.New("reconcile backfill already running")

const backfillWorkers = 5

// BackfillListingSource is the storage contract of the backfill job.
type BackfillListingSource interface {
	Unmatched(ctx context.Context) ([]entities.UnmatchedListing, error)
	SetModelID(ctx context.Context, listingID, modelID int64) error
}

// ReconcileBackfillJob re-runs the matcher over listings that ingested
// without a catalog match, typically after the catalog was re-seeded
// with new makers or models. It only ever touches rows whose model_id
// is NULL; previously reconciled listings are left alone.
type ReconcileBackfillJob struct {
	listings   BackfillListingSource
	reconciler *services.ReconcileService
	metricsReg *metrics.MetricsRegistry

	mu      sync.Mutex
	running bool
	status  dtos.JobStatusView
}

// NewReconcileBackfillJob wires the job. metricsReg may be nil in
// contexts without a metrics endpoint.
func NewReconcileBackfillJob(listings BackfillListingSource, reconciler *services.ReconcileService, metricsReg *metrics.MetricsRegistry) *ReconcileBackfillJob {
	return &ReconcileBackfillJob{
		listings:   listings,
		reconciler: reconciler,
		metricsReg: metricsReg,
		status:     dtos.JobStatusView{Name: "reconcile_backfill", State: "idle"},
	}
}

// Trigger starts a backfill in the background. Returns
// ErrJobAlreadyRunning when one is in flight.
func (j *ReconcileBackfillJob) Trigger(ctx context.Context) error {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return ErrJobAlreadyRunning
	}
	now := time.Now()
	j.running = true
	j.status = dtos.JobStatusView{
		Name:      "reconcile_backfill",
		State:     "running",
		StartedAt: &now,
	}
	j.mu.Unlock()

	go j.run(ctx)
	return nil
}

// Status returns a snapshot of the last (or current) run.
func (j *ReconcileBackfillJob) Status() dtos.JobStatusView {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

func (j *ReconcileBackfillJob) run(ctx context.Context) {
	listings, err := j.listings.Unmatched(ctx)
	if err != nil {
		j.finish("failed", err)
		return
	}

	logging.Info("Reconcile backfill started", "candidates", len(listings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(backfillWorkers)

	for _, listing := range listings {
		listing := listing
		g.Go(func() error {
			matched, err := j.reconcileOne(gctx, listing)
			if err != nil {
				return err
			}
			j.mu.Lock()
			j.status.Processed++
			if matched {
				j.status.Matched++
			}
			j.mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		j.finish("failed", err)
		return
	}
	j.finish("completed", nil)
}

// reconcileOne re-runs extraction and matching for one listing. The
// stored extracted fields are preferred; titles are re-extracted only
// when they are absent.
func (j *ReconcileBackfillJob) reconcileOne(ctx context.Context, listing entities.UnmatchedListing) (bool, error) {
	var make, model string
	if listing.ExtractedMake != nil {
		make = *listing.ExtractedMake
	}
	if listing.ExtractedModel != nil {
		model = *listing.ExtractedModel
	}
	if make == "" || model == "" {
		parts := services.ExtractTitle(listing.Title)
		make, model = parts.Make, parts.Model
	}

	result := j.reconciler.Match(ctx, make, model)
	if j.metricsReg != nil {
		outcome := "unmatched"
		if result.Matched {
			outcome = "matched"
		}
		j.metricsReg.ReconciliationsTotal.WithLabelValues(outcome).Inc()
	}
	if !result.Matched {
		return false, nil
	}

	if err := j.listings.SetModelID(ctx, listing.ID, result.ModelID); err != nil {
		return false, err
	}
	return true, nil
}

func (j *ReconcileBackfillJob) finish(state string, err error) {
	now := time.Now()
	j.mu.Lock()
	defer j.mu.Unlock()
	j.running = false
	j.status.State = state
	j.status.FinishedAt = &now
	if err != nil {
		j.status.LastError = err.Error()
		logging.Error("Reconcile backfill failed", "error", err.Error())
	} else {
		logging.Info("Reconcile backfill finished",
			"processed", j.status.Processed,
			"matched", j.status.Matched,
		)
	}
}
