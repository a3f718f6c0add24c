package store

import "strconv"

// Pagination describes a 1-based page of a listing.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	pages := TotalPages(total, pageSize)
	// Anything past the last page is the same empty page; capping keeps offset() from overflowing.
	if page > pages+1 {
		page = pages + 1
	}
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: pages,
	}
}

func (p Pagination) offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages is ceil(total/pageSize), at least 1 so empty listings still have a page.
func TotalPages(total int64, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if pages < 1 {
		return 1
	}
	return pages
}

// ParsePage reads a page query parameter; anything that is not a positive integer is
// page 1.
func ParsePage(raw string) int {
	if p, err := strconv.Atoi(raw); err == nil && p > 0 {
		return p
	}
	return 1
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// PrevPage is the previous page number.
func (p Pagination) PrevPage() int { return p.Page - 1 }

// NextPage is the following page number.
func (p Pagination) NextPage() int { return p.Page + 1 }
