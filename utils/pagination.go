package utils

import "math"

const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// Pagination represents the pagination details.
type Pagination struct {
	TotalItems  int `json:"total_items"`
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalPages  int `json:"total_pages"`
}

// CreatePagination creates a Pagination object, clamping page and pageSize
// to valid values.
func CreatePagination(totalItems, page, pageSize int) *Pagination {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}

	totalPages := int(math.Ceil(float64(totalItems) / float64(pageSize)))

	return &Pagination{
		TotalItems:  totalItems,
		CurrentPage: page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
	}
}

// Bounds returns the half-open index range of the current page within a
// slice of TotalItems elements.
func (p *Pagination) Bounds() (start, end int) {
	if p.CurrentPage > p.TotalPages {
		return p.TotalItems, p.TotalItems
	}
	start = (p.CurrentPage - 1) * p.PageSize
	end = start + p.PageSize
	if end > p.TotalItems {
		end = p.TotalItems
	}
	return start, end
}
