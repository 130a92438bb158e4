package boletim

import (
	"context"
	"fmt"
)

// Page is one batch of a paged listing. Total is nil when unknown.
type Page[T any] struct {
	Items []T
	Total *int
}

// PageFunc fetches a single upstream page (1-based) of at most perPage items.
type PageFunc[T any] func(ctx context.Context, page, perPage int) (Page[T], error)

// Pager serves windows of arbitrary size over an upstream listing that caps
// per_page at maxPageSize.
type Pager[T any] struct {
	fetch       PageFunc[T]
	maxPageSize int
}

func NewPager[T any](fetch PageFunc[T], maxPageSize int) *Pager[T] {
	if maxPageSize < 1 {
		maxPageSize = 1
	}
	return &Pager[T]{fetch: fetch, maxPageSize: maxPageSize}
}

// Fetch returns items [(page-1)*pageSize, page*pageSize) of the listing in
// upstream order. A short upstream page ends the window early; that is the
// normal end of the listing, not an error.
func (p *Pager[T]) Fetch(ctx context.Context, page, pageSize int) (Page[T], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return Page[T]{}, nil
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	first := start / p.maxPageSize
	last := (end - 1) / p.maxPageSize

	var items []T
	var total *int

	for up := first; up <= last; up++ {
		res, err := p.fetch(ctx, up+1, p.maxPageSize)
		if err != nil {
			return Page[T]{}, fmt.Errorf("fetch upstream page %d: %w", up+1, err)
		}

		if total == nil && res.Total != nil {
			total = res.Total
		}
		// Page N only covers [(N-1)*maxPageSize, N*maxPageSize), whatever
		// per_page the server actually honored.
		items = append(items, res.Items[:min(len(res.Items), p.maxPageSize)]...)

		if len(res.Items) < p.maxPageSize {
			break
		}
		if total != nil && (up+1)*p.maxPageSize >= *total {
			break
		}
	}

	offset := start - first*p.maxPageSize
	if offset >= len(items) {
		return Page[T]{Total: total}, nil
	}
	hi := offset + pageSize
	if hi > len(items) {
		hi = len(items)
	}

	return Page[T]{Items: items[offset:hi], Total: total}, nil
}
