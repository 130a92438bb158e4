package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bulletin_sync/internal/domain"
)

// LedgerStore keeps one row per sync run.
type LedgerStore struct {
	db *sqlx.DB
}

func NewLedgerStore(db *sqlx.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

// Start opens a running ledger entry and returns its id.
func (s *LedgerStore) Start(ctx context.Context, runID uuid.UUID, kind domain.SyncKind, startedAt time.Time) (int64, error) {
	query := `
		INSERT INTO sync_ledger (run_id, sync_type, status, started_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id int64
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		runID, kind, domain.SyncRunning, startedAt,
	).Scan(&id)
	return id, err
}

// Finish closes the entry with its final status and counters.
func (s *LedgerStore) Finish(ctx context.Context, id int64, status domain.SyncStatus, stats *domain.SyncStats, errMsg *string) error {
	query := `
		UPDATE sync_ledger SET
			status = $2,
			filters = $3,
			bulletins = $4,
			biddings = $5,
			follow_ups = $6,
			items_synced = $7,
			error_message = $8,
			finished_at = $9,
			duration_ms = $10
		WHERE id = $1`

	finishedAt := stats.StartedAt.Add(stats.Duration)
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		id,
		status,
		stats.Filters,
		stats.Bulletins,
		stats.Biddings,
		stats.FollowUps,
		stats.ItemsSynced(),
		errMsg,
		finishedAt,
		stats.Duration.Milliseconds(),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Recent returns the newest entries first.
func (s *LedgerStore) Recent(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	query := `
		SELECT id, run_id, sync_type, status, filters, bulletins, biddings, follow_ups,
			items_synced, error_message, started_at, finished_at, duration_ms
		FROM sync_ledger
		ORDER BY started_at DESC, id DESC
		LIMIT $1`

	var entries []domain.LedgerEntry
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &entries, query, limit)
	return entries, err
}

// LastSuccess returns the most recent successful entry.
func (s *LedgerStore) LastSuccess(ctx context.Context) (*domain.LedgerEntry, error) {
	query := `
		SELECT id, run_id, sync_type, status, filters, bulletins, biddings, follow_ups,
			items_synced, error_message, started_at, finished_at, duration_ms
		FROM sync_ledger
		WHERE status = $1
		ORDER BY started_at DESC, id DESC
		LIMIT 1`

	var e domain.LedgerEntry
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &e, query, domain.SyncSuccess)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}
