package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/omart/marketplace/internal/listing"
	"github.com/omart/marketplace/internal/models"
	"github.com/omart/marketplace/internal/transport"
	"github.com/omart/marketplace/internal/util"
)

type Searcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type SearchService struct {
	Index Searcher
}

func (s *SearchService) Search(ctx context.Context, q string, page, limit int) (*transport.ProductPage, error) {
	if s == nil || s.Index == nil {
		return nil, fmt.Errorf("search is not configured: %w", ErrUnavailable)
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, invalid("q", "Search query is required")
	}

	page, limit = util.ClampPage(page, limit, listing.DefaultLimit, listing.MaxLimit, listing.MaxPage)
	from, size := util.Calculate(page, limit)

	total, items, err := s.Index.Search(ctx, q, from, size)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Product{}
	}
	return &transport.ProductPage{Products: items, Pagination: listing.NewPagination(page, limit, total)}, nil
}
