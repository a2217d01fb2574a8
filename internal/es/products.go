package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omart/marketplace/internal/domain"
	"github.com/omart/marketplace/internal/models"
)

const DefaultIndex = "products"

// ProductIndex mirrors publicly listed products into a full-text index.
type ProductIndex struct {
	Client *elasticsearch.Client
	Index  string
}

func NewProductIndex(client *elasticsearch.Client, index string) *ProductIndex {
	if index == "" {
		index = DefaultIndex
	}
	return &ProductIndex{Client: client, Index: index}
}

type productDoc struct {
	ID          uuid.UUID             `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Price       decimal.Decimal       `json:"price"`
	Category    domain.Category       `json:"category"`
	Condition   domain.Condition      `json:"condition"`
	Tags        []string              `json:"tags"`
	Images      []models.ProductImage `json:"images"`
	Location    models.Location       `json:"location"`
	SellerID    uuid.UUID             `json:"sellerId"`
	Status      domain.Status         `json:"status"`
	IsAvailable bool                  `json:"isAvailable"`
	ViewCount   int64                 `json:"viewCount"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

func toDoc(p *models.Product) productDoc {
	return productDoc{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Condition:   p.Condition,
		Tags:        p.Tags,
		Images:      p.Images,
		Location:    p.Location,
		SellerID:    p.SellerID,
		Status:      p.Status,
		IsAvailable: p.IsAvailable,
		ViewCount:   p.ViewCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (x *ProductIndex) IndexProduct(ctx context.Context, p *models.Product) error {
	body, err := json.Marshal(toDoc(p))
	if err != nil {
		return fmt.Errorf("elasticsearch: marshal product: %w", err)
	}
	res, err := x.Client.Index(x.Index, bytes.NewReader(body),
		x.Client.Index.WithContext(ctx),
		x.Client.Index.WithDocumentID(p.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch: index: %w", err)
	}
	return checkResponse(res, "index")
}

// RemoveProduct deletes the document; a missing document is not an error.
func (x *ProductIndex) RemoveProduct(ctx context.Context, id uuid.UUID) error {
	res, err := x.Client.Delete(x.Index, id.String(), x.Client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch: delete: %w", err)
	}
	if res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil
	}
	return checkResponse(res, "delete")
}

func searchBody(query string, from, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"title^2", "description", "tags"},
						"fuzziness": "AUTO",
					},
				},
				"filter": []any{
					map[string]any{"term": map[string]any{"status": domain.StatusApproved}},
					map[string]any{"term": map[string]any{"isAvailable": true}},
				},
			},
		},
		"from": from,
		"size": size,
	}
}

func (x *ProductIndex) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchBody(query, from, size)); err != nil {
		return 0, nil, fmt.Errorf("elasticsearch: encode query: %w", err)
	}

	res, err := x.Client.Search(
		x.Client.Search.WithContext(ctx),
		x.Client.Search.WithIndex(x.Index),
		x.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("elasticsearch: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("elasticsearch: search: %s: %s", res.Status(), body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source productDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("elasticsearch: decode: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		d := hit.Source
		prods[i] = models.Product{
			ID:          d.ID,
			Title:       d.Title,
			Description: d.Description,
			Price:       d.Price,
			Category:    d.Category,
			Condition:   d.Condition,
			Tags:        d.Tags,
			Images:      d.Images,
			Location:    d.Location,
			SellerID:    d.SellerID,
			Status:      d.Status,
			IsAvailable: d.IsAvailable,
			ViewCount:   d.ViewCount,
			CreatedAt:   d.CreatedAt,
			UpdatedAt:   d.UpdatedAt,
		}
	}
	return r.Hits.Total.Value, prods, nil
}

func checkResponse(res *esapi.Response, op string) error {
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("elasticsearch: %s: %s: %s", op, res.Status(), body)
	}
	return nil
}
