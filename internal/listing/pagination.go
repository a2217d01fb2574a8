package listing

import "github.com/omart/marketplace/internal/util"

type Pagination struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalProducts int64 `json:"totalProducts"`
	Limit         int   `json:"limit"`
	HasNext       bool  `json:"hasNext"`
	HasPrev       bool  `json:"hasPrev"`
}

func NewPagination(page, limit int, total int64) Pagination {
	p := util.NewPagination(page, limit, total)
	return Pagination{
		CurrentPage:   p.CurrentPage,
		TotalPages:    p.TotalPages,
		TotalProducts: p.Total,
		Limit:         p.Limit,
		HasNext:       p.HasNext,
		HasPrev:       p.HasPrev,
	}
}
