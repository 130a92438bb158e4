package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"bulletin_sync/internal/domain"
	"bulletin_sync/internal/metrics"
)

// ReconcileStats counts what one batch of records did to the store.
type ReconcileStats struct {
	Biddings  int
	FollowUps int
	Errors    int
	Published int
}

func (r *ReconcileStats) add(o ReconcileStats) {
	r.Biddings += o.Biddings
	r.FollowUps += o.FollowUps
	r.Errors += o.Errors
	r.Published += o.Published
}

// Reconciler writes upstream records into the store one at a time. A
// failing record is logged and skipped; the rest of the batch goes on.
type Reconciler struct {
	biddings  BiddingStore
	followUps FollowUpStore
	publisher Publisher
	logger    *slog.Logger
}

func NewReconciler(
	biddings BiddingStore,
	followUps FollowUpStore,
	publisher Publisher,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		biddings:  biddings,
		followUps: followUps,
		publisher: publisher,
		logger:    logger.With("component", "reconciler"),
	}
}

// Apply upserts the biddings and follow-ups of one bulletin detail.
func (r *Reconciler) Apply(ctx context.Context, runID uuid.UUID, detail *domain.BulletinDetail) ReconcileStats {
	stats := r.UpsertBiddings(ctx, runID, detail.Biddings)
	stats.add(r.UpsertFollowUps(ctx, detail.FollowUps))
	return stats
}

func (r *Reconciler) UpsertBiddings(ctx context.Context, runID uuid.UUID, biddings []domain.Bidding) ReconcileStats {
	var stats ReconcileStats

	for i := range biddings {
		bidding := &biddings[i]

		id, result, err := r.biddings.Upsert(ctx, bidding)
		if err != nil {
			r.logger.Warn("failed to upsert bidding",
				"external_id", bidding.ExternalID,
				"bulletin_id", bidding.BulletinID,
				"error", err,
			)
			metrics.SyncErrorsTotal.WithLabelValues("bidding").Inc()
			stats.Errors++
			continue
		}
		bidding.ID = id
		stats.Biddings++
		metrics.SyncItemsTotal.WithLabelValues("bidding").Inc()

		if result == domain.Unchanged || r.publisher == nil {
			continue
		}

		if err := r.publisher.Publish(ctx, runID, bidding, result == domain.Inserted); err != nil {
			r.logger.Warn("failed to publish bidding event",
				"external_id", bidding.ExternalID,
				"error", err,
			)
			metrics.SyncErrorsTotal.WithLabelValues("publish").Inc()
			stats.Errors++
			continue
		}
		stats.Published++
	}

	return stats
}

func (r *Reconciler) UpsertFollowUps(ctx context.Context, followUps []domain.FollowUp) ReconcileStats {
	var stats ReconcileStats

	for i := range followUps {
		followUp := &followUps[i]

		id, _, err := r.followUps.Upsert(ctx, followUp)
		if err != nil {
			r.logger.Warn("failed to upsert follow-up",
				"external_id", followUp.ExternalID,
				"bulletin_id", followUp.BulletinID,
				"error", err,
			)
			metrics.SyncErrorsTotal.WithLabelValues("follow_up").Inc()
			stats.Errors++
			continue
		}
		followUp.ID = id
		stats.FollowUps++
		metrics.SyncItemsTotal.WithLabelValues("follow_up").Inc()
	}

	return stats
}
