package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"bulletin_sync/internal/domain"
)

type BiddingStore struct {
	db *sqlx.DB
}

func NewBiddingStore(db *sqlx.DB) *BiddingStore {
	return &BiddingStore{db: db}
}

// Upsert inserts or updates the bidding keyed by external id. Rows whose
// content already matches are not rewritten, so repeated runs leave the
// table untouched. A copy from an older bulletin never overwrites one from a
// newer bulletin.
func (s *BiddingStore) Upsert(ctx context.Context, b *domain.Bidding) (int64, domain.UpsertResult, error) {
	query := `
		INSERT INTO biddings (
			external_id, bulletin_id,
			issuer_name, issuer_code, issuer_city, issuer_state, issuer_address, issuer_phone, issuer_site,
			subject, status,
			opening_at, document_at, withdrawal_at, site_visit_at, deadline_at,
			edital_number, process_number, document_url, estimated_value, edital_price,
			synced_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $22
		)
		ON CONFLICT (external_id) DO UPDATE SET
			bulletin_id = EXCLUDED.bulletin_id,
			issuer_name = EXCLUDED.issuer_name,
			issuer_code = EXCLUDED.issuer_code,
			issuer_city = EXCLUDED.issuer_city,
			issuer_state = EXCLUDED.issuer_state,
			issuer_address = EXCLUDED.issuer_address,
			issuer_phone = EXCLUDED.issuer_phone,
			issuer_site = EXCLUDED.issuer_site,
			subject = EXCLUDED.subject,
			status = EXCLUDED.status,
			opening_at = EXCLUDED.opening_at,
			document_at = EXCLUDED.document_at,
			withdrawal_at = EXCLUDED.withdrawal_at,
			site_visit_at = EXCLUDED.site_visit_at,
			deadline_at = EXCLUDED.deadline_at,
			edital_number = EXCLUDED.edital_number,
			process_number = EXCLUDED.process_number,
			document_url = EXCLUDED.document_url,
			estimated_value = EXCLUDED.estimated_value,
			edital_price = EXCLUDED.edital_price,
			synced_at = EXCLUDED.synced_at,
			updated_at = NOW()
		WHERE EXCLUDED.bulletin_id >= biddings.bulletin_id AND (
			biddings.bulletin_id, biddings.issuer_name, biddings.issuer_code, biddings.issuer_city,
			biddings.issuer_state, biddings.issuer_address, biddings.issuer_phone, biddings.issuer_site,
			biddings.subject, biddings.status, biddings.opening_at, biddings.document_at,
			biddings.withdrawal_at, biddings.site_visit_at, biddings.deadline_at, biddings.edital_number,
			biddings.process_number, biddings.document_url, biddings.estimated_value, biddings.edital_price
		) IS DISTINCT FROM (
			EXCLUDED.bulletin_id, EXCLUDED.issuer_name, EXCLUDED.issuer_code, EXCLUDED.issuer_city,
			EXCLUDED.issuer_state, EXCLUDED.issuer_address, EXCLUDED.issuer_phone, EXCLUDED.issuer_site,
			EXCLUDED.subject, EXCLUDED.status, EXCLUDED.opening_at, EXCLUDED.document_at,
			EXCLUDED.withdrawal_at, EXCLUDED.site_visit_at, EXCLUDED.deadline_at, EXCLUDED.edital_number,
			EXCLUDED.process_number, EXCLUDED.document_url, EXCLUDED.estimated_value, EXCLUDED.edital_price
		)
		RETURNING id, (xmax = 0) AS inserted`

	exec := GetExecutor(ctx, s.db)

	var id int64
	var inserted bool
	err := exec.QueryRowxContext(ctx, query,
		b.ExternalID,
		b.BulletinID,
		b.IssuerName,
		b.IssuerCode,
		b.IssuerCity,
		b.IssuerState,
		b.IssuerAddress,
		b.IssuerPhone,
		b.IssuerSite,
		b.Subject,
		b.Status,
		b.OpeningAt,
		b.DocumentAt,
		b.WithdrawalAt,
		b.SiteVisitAt,
		b.DeadlineAt,
		b.EditalNumber,
		b.ProcessNumber,
		b.DocumentURL,
		b.EstimatedValue,
		b.EditalPrice,
		b.SyncedAt,
	).Scan(&id, &inserted)

	if errors.Is(err, sql.ErrNoRows) {
		err = exec.QueryRowxContext(ctx,
			"SELECT id FROM biddings WHERE external_id = $1", b.ExternalID,
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

// ListByExternalID returns every row carrying externalID, oldest first.
func (s *BiddingStore) ListByExternalID(ctx context.Context, externalID int64) ([]domain.Bidding, error) {
	query := `
		SELECT id, external_id, bulletin_id,
			issuer_name, issuer_code, issuer_city, issuer_state, issuer_address, issuer_phone, issuer_site,
			subject, status, opening_at, document_at, withdrawal_at, site_visit_at, deadline_at,
			edital_number, process_number, document_url, estimated_value, edital_price,
			synced_at, updated_at
		FROM biddings
		WHERE external_id = $1
		ORDER BY id`

	var biddings []domain.Bidding
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &biddings, query, externalID)
	return biddings, err
}

// DuplicateGroups lists external ids held by more than one row. IDs are
// ascending.
func (s *BiddingStore) DuplicateGroups(ctx context.Context) ([]domain.DuplicateGroup, error) {
	query := `
		SELECT external_id, array_agg(id ORDER BY id) AS ids
		FROM biddings
		GROUP BY external_id
		HAVING COUNT(*) > 1
		ORDER BY external_id`

	rows, err := GetExecutor(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.DuplicateGroup
	for rows.Next() {
		var g domain.DuplicateGroup
		var ids pq.Int64Array
		if err := rows.Scan(&g.ExternalID, &ids); err != nil {
			return nil, err
		}
		g.IDs = ids
		groups = append(groups, g)
	}

	return groups, rows.Err()
}

// RemoveDuplicates moves favorites from the removed rows onto keep and
// deletes the removed rows. A user keeps at most one favorite per bidding:
// the oldest one is moved and the rest go with their rows. Callers run it
// inside a transaction.
func (s *BiddingStore) RemoveDuplicates(ctx context.Context, keep int64, remove []int64) (int64, error) {
	if len(remove) == 0 {
		return 0, nil
	}

	exec := GetExecutor(ctx, s.db)

	_, err := exec.ExecContext(ctx, `
		UPDATE favorites SET bidding_id = $1
		WHERE id IN (
			SELECT DISTINCT ON (user_id) id
			FROM favorites
			WHERE bidding_id = ANY($2)
				AND user_id NOT IN (SELECT user_id FROM favorites WHERE bidding_id = $1)
			ORDER BY user_id, id
		)`,
		keep, pq.Array(remove),
	)
	if err != nil {
		return 0, err
	}

	res, err := exec.ExecContext(ctx, "DELETE FROM biddings WHERE id = ANY($1)", pq.Array(remove))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// EnsureUniqueIndex adds the structural uniqueness the upsert relies on. It
// fails while duplicates remain.
func (s *BiddingStore) EnsureUniqueIndex(ctx context.Context) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		"CREATE UNIQUE INDEX IF NOT EXISTS biddings_external_id_key ON biddings (external_id)",
	)
	return err
}
