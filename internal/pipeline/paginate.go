package pipeline

import "finanzas/internal/core"

// Pagination is the window state for the transactions table. Page starts at 1.
type Pagination struct {
	Page  int
	Limit int
	Total int
}

// NewPagination returns a first-page window with the given page size.
func NewPagination(limit int) Pagination {
	if limit < 1 {
		limit = 10
	}
	return Pagination{Page: 1, Limit: limit}
}

// SetTotal records the filtered list's length. A total change snaps the
// window back to page 1 so a narrowed filter cannot leave the view on an
// out-of-range page.
func (p *Pagination) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	if total != p.Total {
		p.Total = total
		p.Page = 1
	}
}

// SetPage moves to the requested page, clamped to the valid range.
func (p *Pagination) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	if last := p.Pages(); last > 0 && page > last {
		page = last
	}
	p.Page = page
}

// SetLimit changes the page size and resets to page 1.
func (p *Pagination) SetLimit(limit int) {
	if limit < 1 {
		return
	}
	p.Limit = limit
	p.Page = 1
}

// Pages returns the number of pages for the current total and limit.
func (p Pagination) Pages() int {
	if p.Limit < 1 || p.Total == 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

// Paginate slices the filtered, sorted list at [(page-1)*limit, page*limit).
// Out-of-range pages yield an empty slice.
func Paginate(ts []core.Transaction, p Pagination) []core.Transaction {
	if p.Page < 1 || p.Limit < 1 {
		return nil
	}
	start := (p.Page - 1) * p.Limit
	if start >= len(ts) {
		return []core.Transaction{}
	}
	end := start + p.Limit
	if end > len(ts) {
		end = len(ts)
	}
	return ts[start:end]
}
