package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUnauthorized means the upstream rejected the token or the caller's
	// network origin. It ends the current run without retries.
	ErrUnauthorized   = errors.New("upstream authorization failed")
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrNotFound       = errors.New("not found")
)

type SyncKind string

const (
	SyncFull        SyncKind = "full"
	SyncIncremental SyncKind = "incremental"
	SyncManual      SyncKind = "manual"
)

type SyncStatus string

const (
	SyncRunning SyncStatus = "running"
	SyncSuccess SyncStatus = "success"
	SyncFailed  SyncStatus = "failed"
)

// SyncStats holds statistics about a sync run.
type SyncStats struct {
	RunID     uuid.UUID
	Kind      SyncKind
	Filters   int
	Bulletins int
	Biddings  int
	FollowUps int
	Errors    int
	Published int
	StartedAt time.Time
	Duration  time.Duration
}

// ItemsSynced is the aggregate count stored in the ledger.
func (s *SyncStats) ItemsSynced() int {
	return s.Bulletins + s.Biddings + s.FollowUps
}

// LedgerEntry is one row of the sync ledger.
type LedgerEntry struct {
	ID           int64      `db:"id" json:"id"`
	RunID        uuid.UUID  `db:"run_id" json:"run_id"`
	Kind         SyncKind   `db:"sync_type" json:"sync_type"`
	Status       SyncStatus `db:"status" json:"status"`
	Filters      int        `db:"filters" json:"filters"`
	Bulletins    int        `db:"bulletins" json:"bulletins"`
	Biddings     int        `db:"biddings" json:"biddings"`
	FollowUps    int        `db:"follow_ups" json:"follow_ups"`
	ItemsSynced  int        `db:"items_synced" json:"items_synced"`
	ErrorMessage *string    `db:"error_message" json:"error_message"`
	StartedAt    time.Time  `db:"started_at" json:"started_at"`
	FinishedAt   *time.Time `db:"finished_at" json:"finished_at"`
	DurationMs   *int64     `db:"duration_ms" json:"duration_ms"`
}

// RefreshResult is what the manual refresh trigger reports.
type RefreshResult struct {
	RunID       uuid.UUID `json:"run_id"`
	ItemsSynced int       `json:"items_synced"`
	SyncedAt    time.Time `json:"synced_at"`
}

// DuplicateGroup is a set of bidding rows sharing one external id.
type DuplicateGroup struct {
	ExternalID int64   `db:"external_id" json:"external_id"`
	IDs        []int64 `db:"-"`
}

// DedupeReport summarizes one offline deduplication pass.
type DedupeReport struct {
	Groups      int
	RowsRemoved int
	ExternalIDs []int64
}

// UpsertResult tells what an upsert did to the row.
type UpsertResult int

const (
	Unchanged UpsertResult = iota
	Inserted
	Updated
)

func (r UpsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	default:
		return "unchanged"
	}
}
