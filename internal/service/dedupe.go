package service

import (
	"context"
	"fmt"
	"log/slog"

	"bulletin_sync/internal/domain"
	"bulletin_sync/internal/metrics"
)

// Deduper repairs bidding rows duplicated by older ingestion. It keeps the
// row with the highest internal id, the most recently ingested one.
type Deduper struct {
	biddings  BiddingStore
	txManager TransactionManager
	logger    *slog.Logger
}

func NewDeduper(biddings BiddingStore, txManager TransactionManager, logger *slog.Logger) *Deduper {
	return &Deduper{
		biddings:  biddings,
		txManager: txManager,
		logger:    logger.With("component", "deduper"),
	}
}

func (d *Deduper) Run(ctx context.Context) (*domain.DedupeReport, error) {
	groups, err := d.biddings.DuplicateGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("find duplicate groups: %w", err)
	}

	d.logger.Info("starting dedupe", "groups", len(groups))

	report := &domain.DedupeReport{}
	for _, group := range groups {
		keep, remove := splitSurvivor(group.IDs)
		if len(remove) == 0 {
			continue
		}

		var removed int64
		err := d.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			n, err := d.biddings.RemoveDuplicates(txCtx, keep, remove)
			if err != nil {
				return err
			}
			removed = n
			return nil
		})
		if err != nil {
			return report, fmt.Errorf("dedupe external id %d: %w", group.ExternalID, err)
		}

		d.logger.Debug("deduplicated bidding",
			"external_id", group.ExternalID,
			"kept_id", keep,
			"removed", removed,
		)

		report.Groups++
		report.RowsRemoved += int(removed)
		report.ExternalIDs = append(report.ExternalIDs, group.ExternalID)
		metrics.DedupeRowsRemoved.Add(float64(removed))
	}

	d.logger.Info("dedupe completed",
		"groups", report.Groups,
		"rows_removed", report.RowsRemoved,
	)

	return report, nil
}

// splitSurvivor picks the highest id to keep and returns the others.
func splitSurvivor(ids []int64) (int64, []int64) {
	if len(ids) == 0 {
		return 0, nil
	}

	keep := ids[0]
	for _, id := range ids[1:] {
		keep = max(keep, id)
	}

	remove := make([]int64, 0, len(ids)-1)
	for _, id := range ids {
		if id != keep {
			remove = append(remove, id)
		}
	}
	return keep, remove
}
