package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"bulletin_sync/internal/config"
	"bulletin_sync/internal/domain"
	"bulletin_sync/internal/metrics"
)

// Orchestrator runs full and incremental syncs. At most one run executes at
// a time; a trigger arriving meanwhile gets domain.ErrSyncInProgress.
type Orchestrator struct {
	upstream   Upstream
	filters    FilterStore
	bulletins  BulletinStore
	reconciler *Reconciler
	ledger     LedgerStore
	logger     *slog.Logger
	config     config.SyncConfig

	running atomic.Bool
	now     func() time.Time
}

func NewOrchestrator(
	upstream Upstream,
	filters FilterStore,
	bulletins BulletinStore,
	reconciler *Reconciler,
	ledger LedgerStore,
	logger *slog.Logger,
	cfg config.SyncConfig,
) *Orchestrator {
	return &Orchestrator{
		upstream:   upstream,
		filters:    filters,
		bulletins:  bulletins,
		reconciler: reconciler,
		ledger:     ledger,
		logger:     logger.With("component", "orchestrator"),
		config:     cfg,
		now:        time.Now,
	}
}

// Running reports whether a run is in flight.
func (o *Orchestrator) Running() bool {
	return o.running.Load()
}

// FullSync re-discovers filters and walks every bulletin of each.
func (o *Orchestrator) FullSync(ctx context.Context) (*domain.SyncStats, error) {
	return o.run(ctx, domain.SyncFull)
}

// IncrementalSync revisits the most recent bulletins of each stored filter.
func (o *Orchestrator) IncrementalSync(ctx context.Context) (*domain.SyncStats, error) {
	return o.run(ctx, domain.SyncIncremental)
}

// Refresh is the manual trigger: an incremental sync recorded as manual.
func (o *Orchestrator) Refresh(ctx context.Context) (*domain.RefreshResult, error) {
	stats, err := o.run(ctx, domain.SyncManual)
	if err != nil {
		return nil, err
	}
	return &domain.RefreshResult{
		RunID:       stats.RunID,
		ItemsSynced: stats.ItemsSynced(),
		SyncedAt:    stats.StartedAt.Add(stats.Duration),
	}, nil
}

// DiscoverFilters fetches the account's filters and stores them.
func (o *Orchestrator) DiscoverFilters(ctx context.Context) ([]domain.Filter, error) {
	filters, err := o.upstream.FetchFilters(ctx)
	if err != nil {
		return nil, err
	}

	for i := range filters {
		if err := o.filters.Upsert(ctx, &filters[i]); err != nil {
			return nil, fmt.Errorf("upsert filter %d: %w", filters[i].ID, err)
		}
	}
	metrics.SyncItemsTotal.WithLabelValues("filter").Add(float64(len(filters)))

	o.logger.Info("discovered filters", "count", len(filters))
	return filters, nil
}

func (o *Orchestrator) run(ctx context.Context, kind domain.SyncKind) (*domain.SyncStats, error) {
	if !o.running.CompareAndSwap(false, true) {
		metrics.SyncRunsTotal.WithLabelValues(string(kind), "skipped").Inc()
		return nil, domain.ErrSyncInProgress
	}
	defer o.running.Store(false)

	stats := &domain.SyncStats{
		RunID:     uuid.New(),
		Kind:      kind,
		StartedAt: o.now(),
	}
	logger := o.logger.With("run_id", stats.RunID, "kind", kind)

	ledgerID, err := o.ledger.Start(ctx, stats.RunID, kind, stats.StartedAt)
	if err != nil {
		metrics.SyncRunsTotal.WithLabelValues(string(kind), string(domain.SyncFailed)).Inc()
		return nil, fmt.Errorf("start ledger entry: %w", err)
	}

	logger.Info("starting sync",
		"incremental_bulletins", o.config.IncrementalBulletins,
		"batch_size", o.config.BatchSize,
	)

	runErr := o.execute(ctx, logger, stats)
	stats.Duration = o.now().Sub(stats.StartedAt)

	if err := o.finish(ctx, ledgerID, stats, runErr); err != nil {
		logger.Error("failed to finish ledger entry", "error", err)
	}

	if runErr != nil {
		if errors.Is(runErr, domain.ErrUnauthorized) {
			logger.Error("sync aborted: upstream rejected credentials; check the token and register this host's IP with the provider",
				"error", runErr,
			)
		} else {
			logger.Error("sync failed", "error", runErr)
		}
		return stats, runErr
	}

	logger.Info("sync completed",
		"filters", stats.Filters,
		"bulletins", stats.Bulletins,
		"biddings", stats.Biddings,
		"follow_ups", stats.FollowUps,
		"errors", stats.Errors,
		"published", stats.Published,
		"duration", stats.Duration,
	)

	return stats, nil
}

// finish closes the ledger entry even when ctx is already cancelled.
func (o *Orchestrator) finish(ctx context.Context, ledgerID int64, stats *domain.SyncStats, runErr error) error {
	status := domain.SyncSuccess
	var errMsg *string
	if runErr != nil {
		status = domain.SyncFailed
		msg := runErr.Error()
		errMsg = &msg
	}

	kind := string(stats.Kind)
	metrics.SyncRunsTotal.WithLabelValues(kind, string(status)).Inc()
	metrics.SyncDuration.WithLabelValues(kind).Observe(stats.Duration.Seconds())
	if runErr == nil {
		metrics.SyncLastSuccess.Set(float64(stats.StartedAt.Add(stats.Duration).Unix()))
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	return o.ledger.Finish(ctx, ledgerID, status, stats, errMsg)
}

func (o *Orchestrator) execute(ctx context.Context, logger *slog.Logger, stats *domain.SyncStats) error {
	filters, err := o.filtersFor(ctx, logger, stats.Kind)
	if err != nil {
		return err
	}
	stats.Filters = len(filters)

	for _, filter := range filters {
		err := o.syncFilter(ctx, logger.With("filter_id", filter.ID), filter.ID, stats)
		if err == nil {
			continue
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		logger.Warn("failed to sync filter", "filter_id", filter.ID, "error", err)
		metrics.SyncErrorsTotal.WithLabelValues("filter").Inc()
		stats.Errors++
	}

	return ctx.Err()
}

// filtersFor returns the filters a run walks. Full runs always re-discover;
// the others use stored filters and discover only when none exist yet.
func (o *Orchestrator) filtersFor(ctx context.Context, logger *slog.Logger, kind domain.SyncKind) ([]domain.Filter, error) {
	if kind == domain.SyncFull {
		filters, err := o.DiscoverFilters(ctx)
		if err == nil {
			return filters, nil
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, err
		}
		logger.Warn("filter discovery failed, using stored filters", "error", err)
	}

	filters, err := o.filters.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	if len(filters) > 0 || kind == domain.SyncFull {
		return filters, nil
	}

	logger.Info("no stored filters, discovering")
	return o.DiscoverFilters(ctx)
}

func (o *Orchestrator) syncFilter(ctx context.Context, logger *slog.Logger, filterID int64, stats *domain.SyncStats) error {
	if stats.Kind != domain.SyncFull {
		page, err := o.upstream.FetchBulletins(ctx, filterID, 1, o.config.IncrementalBulletins)
		if err != nil {
			return err
		}
		return o.syncBulletins(ctx, logger, page.Bulletins, stats)
	}

	size := o.config.FullPageSize
	for n := 1; n <= o.config.MaxFullPages; n++ {
		page, err := o.upstream.FetchBulletins(ctx, filterID, n, size)
		if err != nil {
			return err
		}
		if err := o.syncBulletins(ctx, logger, page.Bulletins, stats); err != nil {
			return err
		}

		if len(page.Bulletins) < size {
			return nil
		}
		if page.Total != nil && n*size >= *page.Total {
			return nil
		}
	}

	logger.Warn("full sync stopped at page limit", "max_full_pages", o.config.MaxFullPages)
	return nil
}

// syncBulletins processes bulletins newest first, in fixed-size concurrent
// batches. Only an authorization failure or the end of ctx stops it.
func (o *Orchestrator) syncBulletins(ctx context.Context, logger *slog.Logger, bulletins []domain.Bulletin, stats *domain.SyncStats) error {
	bulletins = slices.Clone(bulletins)
	slices.SortFunc(bulletins, func(a, b domain.Bulletin) int {
		return cmp.Compare(b.ID, a.ID)
	})

	batchSize := max(o.config.BatchSize, 1)
	for start := 0; start < len(bulletins); start += batchSize {
		batch := bulletins[start:min(start+batchSize, len(bulletins))]
		outcomes := make([]bulletinOutcome, len(batch))

		g, gctx := errgroup.WithContext(ctx)
		for i := range batch {
			g.Go(func() error {
				outcome, err := o.syncBulletin(gctx, logger, stats.RunID, batch[i])
				outcomes[i] = outcome
				return err
			})
		}
		err := g.Wait()

		for _, outcome := range outcomes {
			outcome.addTo(stats)
		}
		if err != nil {
			return err
		}
		// Detail failures are absorbed per bulletin, so an expired run
		// only shows up here.
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	return nil
}

type bulletinOutcome struct {
	bulletin bool
	records  ReconcileStats
}

func (b bulletinOutcome) addTo(stats *domain.SyncStats) {
	if b.bulletin {
		stats.Bulletins++
	}
	stats.Biddings += b.records.Biddings
	stats.FollowUps += b.records.FollowUps
	stats.Errors += b.records.Errors
	stats.Published += b.records.Published
}

// syncBulletin fetches one bulletin's detail and reconciles it. Failures
// are absorbed here unless they are authorization failures.
func (o *Orchestrator) syncBulletin(ctx context.Context, logger *slog.Logger, runID uuid.UUID, listed domain.Bulletin) (bulletinOutcome, error) {
	var outcome bulletinOutcome

	detail, err := o.upstream.FetchBulletinDetail(ctx, listed.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return outcome, err
		}
		logger.Warn("failed to fetch bulletin detail", "bulletin_id", listed.ID, "error", err)
		metrics.SyncErrorsTotal.WithLabelValues("bulletin").Inc()
		outcome.records.Errors++
		return outcome, nil
	}

	bulletin := mergeBulletin(listed, detail.Bulletin)
	if err := o.bulletins.Upsert(ctx, &bulletin); err != nil {
		logger.Warn("failed to upsert bulletin", "bulletin_id", bulletin.ID, "error", err)
		metrics.SyncErrorsTotal.WithLabelValues("bulletin").Inc()
		outcome.records.Errors++
		return outcome, nil
	}
	outcome.bulletin = true
	metrics.SyncItemsTotal.WithLabelValues("bulletin").Inc()

	outcome.records = o.reconciler.Apply(ctx, runID, detail)

	logger.Debug("synced bulletin",
		"bulletin_id", bulletin.ID,
		"biddings", outcome.records.Biddings,
		"follow_ups", outcome.records.FollowUps,
		"errors", outcome.records.Errors,
	)

	return outcome, nil
}

// mergeBulletin prefers the detail payload and falls back to the listing
// for fields the detail left empty.
func mergeBulletin(listed, detail domain.Bulletin) domain.Bulletin {
	merged := detail
	merged.ID = listed.ID
	if merged.FilterID == 0 {
		merged.FilterID = listed.FilterID
	}
	if merged.EditionNumber == 0 {
		merged.EditionNumber = listed.EditionNumber
	}
	if merged.ClosingAt == nil {
		merged.ClosingAt = listed.ClosingAt
	}
	if merged.BiddingCount == 0 {
		merged.BiddingCount = listed.BiddingCount
	}
	if merged.FollowUpCount == 0 {
		merged.FollowUpCount = listed.FollowUpCount
	}
	if merged.SyncedAt.IsZero() {
		merged.SyncedAt = listed.SyncedAt
	}
	return merged
}
