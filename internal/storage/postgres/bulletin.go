package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"bulletin_sync/internal/domain"
)

type BulletinStore struct {
	db *sqlx.DB
}

func NewBulletinStore(db *sqlx.DB) *BulletinStore {
	return &BulletinStore{db: db}
}

// Upsert writes the upstream-owned columns; viewed is left alone.
func (s *BulletinStore) Upsert(ctx context.Context, b *domain.Bulletin) error {
	query := `
		INSERT INTO bulletins (
			id, filter_id, edition_number, closing_at, bidding_count, follow_up_count, synced_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			filter_id = EXCLUDED.filter_id,
			edition_number = EXCLUDED.edition_number,
			closing_at = EXCLUDED.closing_at,
			bidding_count = EXCLUDED.bidding_count,
			follow_up_count = EXCLUDED.follow_up_count,
			synced_at = EXCLUDED.synced_at`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		b.ID, b.FilterID, b.EditionNumber, b.ClosingAt, b.BiddingCount, b.FollowUpCount, b.SyncedAt,
	)
	return err
}

func (s *BulletinStore) Get(ctx context.Context, id int64) (*domain.Bulletin, error) {
	query := `
		SELECT id, filter_id, edition_number, closing_at, bidding_count, follow_up_count, viewed, synced_at
		FROM bulletins
		WHERE id = $1`

	var b domain.Bulletin
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &b, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// MarkViewed sets the locally-owned viewed flag.
func (s *BulletinStore) MarkViewed(ctx context.Context, id int64) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		"UPDATE bulletins SET viewed = TRUE WHERE id = $1", id,
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
