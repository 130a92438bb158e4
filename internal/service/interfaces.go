package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bulletin_sync/internal/domain"
)

// Upstream is the bulletin API seen in domain terms.
type Upstream interface {
	FetchFilters(ctx context.Context) ([]domain.Filter, error)
	FetchBulletins(ctx context.Context, filterID int64, page, pageSize int) (*domain.BulletinPage, error)
	FetchBulletinDetail(ctx context.Context, bulletinID int64) (*domain.BulletinDetail, error)
}

type FilterStore interface {
	Upsert(ctx context.Context, filter *domain.Filter) error
	List(ctx context.Context) ([]domain.Filter, error)
}

type BulletinStore interface {
	Upsert(ctx context.Context, bulletin *domain.Bulletin) error
}

type BiddingStore interface {
	Upsert(ctx context.Context, bidding *domain.Bidding) (int64, domain.UpsertResult, error)
	DuplicateGroups(ctx context.Context) ([]domain.DuplicateGroup, error)
	RemoveDuplicates(ctx context.Context, keep int64, remove []int64) (int64, error)
}

type FollowUpStore interface {
	Upsert(ctx context.Context, followUp *domain.FollowUp) (int64, domain.UpsertResult, error)
}

type LedgerStore interface {
	Start(ctx context.Context, runID uuid.UUID, kind domain.SyncKind, startedAt time.Time) (int64, error)
	Finish(ctx context.Context, id int64, status domain.SyncStatus, stats *domain.SyncStats, errMsg *string) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, runID uuid.UUID, bidding *domain.Bidding, isNew bool) error
	Close() error
}
