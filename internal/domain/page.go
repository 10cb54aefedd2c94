package domain

// Listing defaults for paginated endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationParams is a 1-indexed page request.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams applies defaults to optional query values. Values
// below 1 are ignored and Limit is capped at MaxPageSize.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageSize}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, MaxPageSize)
	}
	return p
}

// Offset is the SQL OFFSET for the page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pages is the number of pages needed to show total rows; at least 1.
func (p PaginationParams) Pages(total int64) int {
	if total <= 0 || p.Limit <= 0 {
		return 1
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}
