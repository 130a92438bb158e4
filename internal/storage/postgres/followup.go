package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"bulletin_sync/internal/domain"
)

type FollowUpStore struct {
	db *sqlx.DB
}

func NewFollowUpStore(db *sqlx.DB) *FollowUpStore {
	return &FollowUpStore{db: db}
}

// Upsert keeps the copy from the newest bulletin, like BiddingStore.Upsert.
func (s *FollowUpStore) Upsert(ctx context.Context, f *domain.FollowUp) (int64, domain.UpsertResult, error) {
	query := `
		INSERT INTO follow_ups (
			external_id, bulletin_id, bidding_external_id, issuer_name, subject,
			synthesis, edital_number, process_number, source_date, synced_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (external_id) DO UPDATE SET
			bulletin_id = EXCLUDED.bulletin_id,
			bidding_external_id = EXCLUDED.bidding_external_id,
			issuer_name = EXCLUDED.issuer_name,
			subject = EXCLUDED.subject,
			synthesis = EXCLUDED.synthesis,
			edital_number = EXCLUDED.edital_number,
			process_number = EXCLUDED.process_number,
			source_date = EXCLUDED.source_date,
			synced_at = EXCLUDED.synced_at,
			updated_at = NOW()
		WHERE EXCLUDED.bulletin_id >= follow_ups.bulletin_id AND (
			follow_ups.bulletin_id, follow_ups.bidding_external_id, follow_ups.issuer_name,
			follow_ups.subject, follow_ups.synthesis, follow_ups.edital_number,
			follow_ups.process_number, follow_ups.source_date
		) IS DISTINCT FROM (
			EXCLUDED.bulletin_id, EXCLUDED.bidding_external_id, EXCLUDED.issuer_name,
			EXCLUDED.subject, EXCLUDED.synthesis, EXCLUDED.edital_number,
			EXCLUDED.process_number, EXCLUDED.source_date
		)
		RETURNING id, (xmax = 0) AS inserted`

	exec := GetExecutor(ctx, s.db)

	var id int64
	var inserted bool
	err := exec.QueryRowxContext(ctx, query,
		f.ExternalID,
		f.BulletinID,
		f.BiddingExternalID,
		f.IssuerName,
		f.Subject,
		f.Synthesis,
		f.EditalNumber,
		f.ProcessNumber,
		f.SourceDate,
		f.SyncedAt,
	).Scan(&id, &inserted)

	if errors.Is(err, sql.ErrNoRows) {
		err = exec.QueryRowxContext(ctx,
			"SELECT id FROM follow_ups WHERE external_id = $1", f.ExternalID,
		).Scan(&id)
		if err != nil {
			return 0, domain.Unchanged, err
		}
		return id, domain.Unchanged, nil
	}
	if err != nil {
		return 0, domain.Unchanged, err
	}

	if inserted {
		return id, domain.Inserted, nil
	}
	return id, domain.Updated, nil
}

// ListByBidding returns follow-ups referencing the bidding's external id.
func (s *FollowUpStore) ListByBidding(ctx context.Context, biddingExternalID int64) ([]domain.FollowUp, error) {
	query := `
		SELECT id, external_id, bulletin_id, bidding_external_id, issuer_name, subject,
			synthesis, edital_number, process_number, source_date, synced_at, updated_at
		FROM follow_ups
		WHERE bidding_external_id = $1
		ORDER BY external_id`

	var followUps []domain.FollowUp
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &followUps, query, biddingExternalID)
	return followUps, err
}
