package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"bulletin_sync/internal/domain"
)

type FilterStore struct {
	db *sqlx.DB
}

func NewFilterStore(db *sqlx.DB) *FilterStore {
	return &FilterStore{db: db}
}

func (s *FilterStore) Upsert(ctx context.Context, f *domain.Filter) error {
	query := `
		INSERT INTO filters (id, client_id, description, morning, afternoon, night)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			client_id = EXCLUDED.client_id,
			description = EXCLUDED.description,
			morning = EXCLUDED.morning,
			afternoon = EXCLUDED.afternoon,
			night = EXCLUDED.night,
			updated_at = NOW()`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		f.ID, f.ClientID, f.Description, f.Morning, f.Afternoon, f.Night,
	)
	return err
}

func (s *FilterStore) List(ctx context.Context) ([]domain.Filter, error) {
	query := `
		SELECT id, client_id, description, morning, afternoon, night
		FROM filters
		ORDER BY id`

	var filters []domain.Filter
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &filters, query)
	return filters, err
}
