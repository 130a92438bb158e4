package domain

import "time"

// Filter is a saved upstream search criterion.
type Filter struct {
	ID          int64  `db:"id" json:"id"`
	ClientID    int64  `db:"client_id" json:"client_id"`
	Description string `db:"description" json:"description"`
	Morning     bool   `db:"morning" json:"morning"`
	Afternoon   bool   `db:"afternoon" json:"afternoon"`
	Night       bool   `db:"night" json:"night"`
}

// Bulletin is one upstream edition. Viewed is owned locally and never
// overwritten by sync.
type Bulletin struct {
	ID            int64      `db:"id" json:"id"`
	FilterID      int64      `db:"filter_id" json:"filter_id"`
	EditionNumber int64      `db:"edition_number" json:"edition_number"`
	ClosingAt     *time.Time `db:"closing_at" json:"closing_at"`
	BiddingCount  int        `db:"bidding_count" json:"bidding_count"`
	FollowUpCount int        `db:"follow_up_count" json:"follow_up_count"`
	Viewed        bool       `db:"viewed" json:"viewed"`
	SyncedAt      time.Time  `db:"synced_at" json:"synced_at"`
}

type Bidding struct {
	ID         int64 `db:"id" json:"id"`
	ExternalID int64 `db:"external_id" json:"external_id"`
	BulletinID int64 `db:"bulletin_id" json:"bulletin_id"`

	IssuerName    string `db:"issuer_name" json:"issuer_name"`
	IssuerCode    string `db:"issuer_code" json:"issuer_code"`
	IssuerCity    string `db:"issuer_city" json:"issuer_city"`
	IssuerState   string `db:"issuer_state" json:"issuer_state"`
	IssuerAddress string `db:"issuer_address" json:"issuer_address"`
	IssuerPhone   string `db:"issuer_phone" json:"issuer_phone"`
	IssuerSite    string `db:"issuer_site" json:"issuer_site"`

	Subject string `db:"subject" json:"subject"`
	Status  string `db:"status" json:"status"`

	OpeningAt    *time.Time `db:"opening_at" json:"opening_at"`
	DocumentAt   *time.Time `db:"document_at" json:"document_at"`
	WithdrawalAt *time.Time `db:"withdrawal_at" json:"withdrawal_at"`
	SiteVisitAt  *time.Time `db:"site_visit_at" json:"site_visit_at"`
	DeadlineAt   *time.Time `db:"deadline_at" json:"deadline_at"`

	EditalNumber   string   `db:"edital_number" json:"edital_number"`
	ProcessNumber  string   `db:"process_number" json:"process_number"`
	DocumentURL    string   `db:"document_url" json:"document_url"`
	EstimatedValue *float64 `db:"estimated_value" json:"estimated_value"`
	EditalPrice    *float64 `db:"edital_price" json:"edital_price"`

	SyncedAt  time.Time `db:"synced_at" json:"synced_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FollowUp is a later update tied to a bidding.
type FollowUp struct {
	ID                int64      `db:"id" json:"id"`
	ExternalID        int64      `db:"external_id" json:"external_id"`
	BulletinID        int64      `db:"bulletin_id" json:"bulletin_id"`
	BiddingExternalID *int64     `db:"bidding_external_id" json:"bidding_external_id"`
	IssuerName        string     `db:"issuer_name" json:"issuer_name"`
	Subject           string     `db:"subject" json:"subject"`
	Synthesis         string     `db:"synthesis" json:"synthesis"`
	EditalNumber      string     `db:"edital_number" json:"edital_number"`
	ProcessNumber     string     `db:"process_number" json:"process_number"`
	SourceDate        *time.Time `db:"source_date" json:"source_date"`
	SyncedAt          time.Time  `db:"synced_at" json:"synced_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// BulletinPage is one window of a filter's bulletin listing. Total is nil
// when the upstream did not report one.
type BulletinPage struct {
	Bulletins []Bulletin
	Total     *int
}

// BulletinDetail is a bulletin together with its embedded records.
type BulletinDetail struct {
	Bulletin  Bulletin
	Biddings  []Bidding
	FollowUps []FollowUp
}
