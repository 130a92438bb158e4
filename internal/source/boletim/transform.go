package boletim

import (
	"net/url"
	"strings"
	"time"

	"bulletin_sync/internal/domain"
	"bulletin_sync/internal/status"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// Transformer maps upstream records into the local entity shape.
type Transformer struct {
	documentBaseURL string
	now             func() time.Time
}

func NewTransformer(documentBaseURL string) *Transformer {
	return &Transformer{
		documentBaseURL: strings.TrimRight(documentBaseURL, "/"),
		now:             time.Now,
	}
}

func (t *Transformer) Filter(clientID int64, f APIFilter) domain.Filter {
	return domain.Filter{
		ID:          f.ID,
		ClientID:    clientID,
		Description: strings.TrimSpace(f.Description),
		Morning:     f.Morning,
		Afternoon:   f.Afternoon,
		Night:       f.Night,
	}
}

func (t *Transformer) Bulletin(b APIBulletin) domain.Bulletin {
	return domain.Bulletin{
		ID:            b.ID,
		FilterID:      b.FilterID,
		EditionNumber: b.EditionNumber,
		ClosingAt:     parseTime(b.ClosingAt),
		BiddingCount:  b.BiddingCount,
		FollowUpCount: b.FollowUpCount,
		SyncedAt:      t.now().UTC(),
	}
}

func (t *Transformer) Bidding(bulletinID int64, b APIBidding) domain.Bidding {
	now := t.now().UTC()

	documentAt := parseTime(b.DocumentAt)
	deadlineAt := parseTime(b.DeadlineAt)

	// The upstream often leaves the opening date blank but fills a
	// later-stage date.
	openingAt := firstTime(parseTime(b.OpeningAt), documentAt, deadlineAt)

	return domain.Bidding{
		ExternalID:     b.ID,
		BulletinID:     bulletinID,
		IssuerName:     strings.TrimSpace(b.Issuer.Name),
		IssuerCode:     string(b.Issuer.Code),
		IssuerCity:     strings.TrimSpace(b.Issuer.City),
		IssuerState:    strings.ToUpper(strings.TrimSpace(b.Issuer.State)),
		IssuerAddress:  strings.TrimSpace(b.Issuer.Address),
		IssuerPhone:    NormalizePhone(string(b.Issuer.Phone)),
		IssuerSite:     NormalizeSite(b.Issuer.Site),
		Subject:        strings.TrimSpace(b.Subject),
		Status:         status.Canonicalize(b.Status),
		OpeningAt:      openingAt,
		DocumentAt:     documentAt,
		WithdrawalAt:   parseTime(b.WithdrawalAt),
		SiteVisitAt:    parseTime(b.SiteVisitAt),
		DeadlineAt:     deadlineAt,
		EditalNumber:   string(b.Edital),
		ProcessNumber:  string(b.Process),
		DocumentURL:    t.ResolveDocumentURL(b.DocumentURL),
		EstimatedValue: b.EstimatedValue.Ptr(),
		EditalPrice:    b.EditalPrice.Ptr(),
		SyncedAt:       now,
		UpdatedAt:      now,
	}
}

func (t *Transformer) FollowUp(bulletinID int64, f APIFollowUp) domain.FollowUp {
	now := t.now().UTC()

	var biddingID *int64
	if f.BiddingID > 0 {
		id := f.BiddingID
		biddingID = &id
	}

	return domain.FollowUp{
		ExternalID:        f.ID,
		BulletinID:        bulletinID,
		BiddingExternalID: biddingID,
		IssuerName:        strings.TrimSpace(f.Issuer.Name),
		Subject:           strings.TrimSpace(f.Subject),
		Synthesis:         strings.TrimSpace(f.Synthesis),
		EditalNumber:      string(f.Edital),
		ProcessNumber:     string(f.Process),
		SourceDate:        parseTime(f.SourceAt),
		SyncedAt:          now,
		UpdatedAt:         now,
	}
}

// ResolveDocumentURL makes a relative document link absolute.
func (t *Transformer) ResolveDocumentURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if u, err := url.Parse(raw); err == nil && u.IsAbs() {
		return raw
	}
	if t.documentBaseURL == "" {
		return raw
	}
	return t.documentBaseURL + "/" + strings.TrimLeft(raw, "/")
}

// NormalizeSite trims a site and adds a scheme when it has none.
func NormalizeSite(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return s
	}
	return "http://" + s
}

// NormalizePhone formats Brazilian 10/11-digit numbers as (DD) NNNN-NNNN or
// (DD) NNNNN-NNNN. Anything else comes back trimmed.
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	switch len(d) {
	case 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	case 11:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	default:
		return s
	}
}

// parseTime never fails: blank or unknown formats yield nil.
func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "0000-00-00") {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func firstTime(ts ...*time.Time) *time.Time {
	for _, t := range ts {
		if t != nil {
			return t
		}
	}
	return nil
}
