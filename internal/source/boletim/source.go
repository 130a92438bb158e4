package boletim

import (
	"context"
	"fmt"
	"log/slog"

	"bulletin_sync/internal/domain"
)

// Source exposes the bulletin API in domain terms: paged listings go through
// the Pager and every record through the Transformer.
type Source struct {
	client      *Client
	transform   *Transformer
	maxPageSize int
	logger      *slog.Logger
}

func NewSource(client *Client, transform *Transformer, maxPageSize int, logger *slog.Logger) *Source {
	return &Source{
		client:      client,
		transform:   transform,
		maxPageSize: maxPageSize,
		logger:      logger.With("component", "boletim_source"),
	}
}

// FetchFilters discovers the filters registered for the account.
func (s *Source) FetchFilters(ctx context.Context) ([]domain.Filter, error) {
	resp, err := s.client.Filters(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch filters: %w", err)
	}

	filters := make([]domain.Filter, 0, len(resp.Client.Filters))
	for _, f := range resp.Client.Filters {
		filters = append(filters, s.transform.Filter(resp.Client.ID, f))
	}
	return filters, nil
}

// FetchBulletins returns one window of a filter's bulletins, most recent
// first. pageSize may exceed the upstream cap.
func (s *Source) FetchBulletins(ctx context.Context, filterID int64, page, pageSize int) (*domain.BulletinPage, error) {
	pager := NewPager(func(ctx context.Context, page, perPage int) (Page[APIBulletin], error) {
		resp, err := s.client.Bulletins(ctx, filterID, page, perPage)
		if err != nil {
			return Page[APIBulletin]{}, err
		}
		return Page[APIBulletin]{Items: resp.Bulletins, Total: resp.Total}, nil
	}, s.maxPageSize)

	window, err := pager.Fetch(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("fetch bulletins for filter %d: %w", filterID, err)
	}

	bulletins := make([]domain.Bulletin, 0, len(window.Items))
	for _, b := range window.Items {
		bulletin := s.transform.Bulletin(b)
		if bulletin.FilterID == 0 {
			bulletin.FilterID = filterID
		}
		bulletins = append(bulletins, bulletin)
	}

	s.logger.Debug("fetched bulletins",
		"filter_id", filterID,
		"page", page,
		"page_size", pageSize,
		"count", len(bulletins),
	)

	return &domain.BulletinPage{Bulletins: bulletins, Total: window.Total}, nil
}

// FetchBulletinDetail fetches a bulletin with its biddings and follow-ups.
func (s *Source) FetchBulletinDetail(ctx context.Context, bulletinID int64) (*domain.BulletinDetail, error) {
	resp, err := s.client.Bulletin(ctx, bulletinID)
	if err != nil {
		return nil, fmt.Errorf("fetch bulletin %d: %w", bulletinID, err)
	}

	detail := &domain.BulletinDetail{
		Bulletin:  s.transform.Bulletin(resp.Bulletin),
		Biddings:  make([]domain.Bidding, 0, len(resp.Biddings)),
		FollowUps: make([]domain.FollowUp, 0, len(resp.FollowUps)),
	}
	if detail.Bulletin.ID == 0 {
		detail.Bulletin.ID = bulletinID
	}

	for _, b := range resp.Biddings {
		if b.ID == 0 {
			s.logger.Warn("skipping bidding without id", "bulletin_id", bulletinID)
			continue
		}
		detail.Biddings = append(detail.Biddings, s.transform.Bidding(bulletinID, b))
	}
	for _, f := range resp.FollowUps {
		if f.ID == 0 {
			s.logger.Warn("skipping follow-up without id", "bulletin_id", bulletinID)
			continue
		}
		detail.FollowUps = append(detail.FollowUps, s.transform.FollowUp(bulletinID, f))
	}

	return detail, nil
}
