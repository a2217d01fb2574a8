package util

import "strconv"

const DefaultPageSize = 12

func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = DefaultPageSize
	}
	from = (page - 1) * size
	return from, size
}

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// ClampPage returns page and limit bounded to [1,maxPage] and [1,maxLimit].
func ClampPage(page, limit, defLimit, maxLimit, maxPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if limit < 1 {
		limit = defLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	Total       int64 `json:"total"`
	Limit       int   `json:"limit"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := TotalPages(total, limit)
	return Pagination{
		CurrentPage: page,
		TotalPages:  pages,
		Total:       total,
		Limit:       limit,
		HasNext:     page < pages,
		HasPrev:     page > 1,
	}
}
