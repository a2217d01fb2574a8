package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/omart/marketplace/internal/domain"
	"github.com/omart/marketplace/internal/listing"
	"github.com/omart/marketplace/internal/media"
	"github.com/omart/marketplace/internal/models"
	"github.com/omart/marketplace/internal/repo"
	"github.com/omart/marketplace/internal/transport"
)

const listingCachePrefix = "products_list:"

type CatalogService struct {
	Repo  *repo.GormRepo
	Media *media.Attacher
	Hooks Hooks
}

func (s *CatalogService) ListProducts(ctx context.Context, f listing.Filters) (*transport.ProductPage, error) {
	key := f.CacheKey(listingCachePrefix)
	if s.Hooks.Cache != nil {
		if raw, ok := s.Hooks.Cache.Get(ctx, key); ok {
			var page transport.ProductPage
			if err := json.Unmarshal(raw, &page); err == nil {
				return &page, nil
			}
		}
	}

	items, total, err := s.Repo.ListPublicProducts(ctx, f)
	if err != nil {
		return nil, err
	}
	page := &transport.ProductPage{
		Products:   items,
		Pagination: listing.NewPagination(f.Page, f.Limit, total),
	}

	if s.Hooks.Cache != nil {
		if raw, err := json.Marshal(page); err == nil {
			s.Hooks.Cache.Set(ctx, key, raw)
		}
	}
	return page, nil
}

// GetProduct returns any product by id, whatever its status, counting the view.
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if err := s.Repo.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound("product", err)
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor domain.Actor, req transport.ProductRequest, files []media.File) (*models.Product, error) {
	if actor.Role != domain.RoleSeller && !actor.IsAdmin() {
		return nil, fmt.Errorf("only sellers can list products: %w", ErrForbidden)
	}

	p := &models.Product{
		SellerID:    actor.ID,
		Status:      domain.StatusPending,
		IsAvailable: true,
		Condition:   domain.ConditionNew,
	}
	if err := applyProductRequest(p, req, true); err != nil {
		return nil, err
	}
	if err := s.Media.Validate(files, 0, true); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	uploaded, err := s.Media.UploadAll(ctx, files)
	if err != nil {
		return nil, err
	}
	p.Images = toProductImages(uploaded, 0)

	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		s.Media.Discard(ctx, uploaded)
		return nil, err
	}

	created, err := s.Repo.GetProduct(ctx, p.ID)
	if err != nil {
		created = p
	}
	s.Hooks.productChanged(ctx, EventProductCreated, created, actor)
	return created, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, actor domain.Actor, id uuid.UUID, req transport.ProductRequest, files []media.File) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound("product", err)
	}
	if _, err := domain.Transition(p.Status, domain.EventEdit, actor, p.SellerID, ""); err != nil {
		return nil, mapDomain(err)
	}

	if err := applyProductRequest(p, req, false); err != nil {
		return nil, err
	}
	if err := s.Media.Validate(files, len(p.Images), false); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	uploaded, err := s.Media.UploadAll(ctx, files)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SaveProduct(ctx, p, toProductImages(uploaded, len(p.Images))); err != nil {
		s.Media.Discard(ctx, uploaded)
		return nil, notFound("product", err)
	}

	updated, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound("product", err)
	}
	s.Hooks.productChanged(ctx, EventProductUpdated, updated, actor)
	return updated, nil
}

// DeleteProduct removes the record, then its remote images best-effort.
func (s *CatalogService) DeleteProduct(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return notFound("product", err)
	}
	if _, err := domain.Transition(p.Status, domain.EventDelete, actor, p.SellerID, ""); err != nil {
		return mapDomain(err)
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return notFound("product", err)
	}

	s.Media.Discard(ctx, fromProductImages(p.Images))
	s.Hooks.productChanged(ctx, EventProductDeleted, p, actor)
	return nil
}

func (s *CatalogService) MarkSold(ctx context.Context, actor domain.Actor, id uuid.UUID, buyerID *uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound("product", err)
	}
	next, err := domain.Transition(p.Status, domain.EventMarkSold, actor, p.SellerID, "")
	if err != nil {
		return nil, mapDomain(err)
	}

	now := time.Now().UTC()
	fields := map[string]any{
		"status":       next,
		"is_available": false,
		"sold_at":      now,
	}
	if buyerID != nil {
		if *buyerID == p.SellerID {
			return nil, invalid("buyerId", "seller cannot buy their own product")
		}
		if _, err := s.Repo.GetUser(ctx, *buyerID); err != nil {
			if errors.Is(notFound("buyer", err), ErrNotFound) {
				return nil, invalid("buyerId", "buyer does not exist")
			}
			return nil, err
		}
		fields["buyer_id"] = *buyerID
	}

	if err := s.Repo.UpdateProductFields(ctx, id, fields); err != nil {
		return nil, notFound("product", err)
	}
	sold, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound("product", err)
	}
	s.Hooks.productChanged(ctx, EventProductSold, sold, actor)
	return sold, nil
}

// SellerProducts lists the actor's own products in any status.
func (s *CatalogService) SellerProducts(ctx context.Context, actor domain.Actor, status domain.Status, page, limit int) (*transport.ProductPage, error) {
	if status != "" && !status.Valid() {
		return nil, invalid("status", "must be one of pending, approved, rejected, sold")
	}
	items, total, err := s.Repo.ListProducts(ctx, actor.ID, status, page, limit)
	if err != nil {
		return nil, err
	}
	return &transport.ProductPage{Products: items, Pagination: listing.NewPagination(page, limit, total)}, nil
}

func applyProductRequest(p *models.Product, req transport.ProductRequest, create bool) error {
	var fields []listing.FieldError
	bad := func(field, msg string) {
		fields = append(fields, listing.FieldError{Field: field, Message: msg})
	}

	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if n := utf8.RuneCountInString(t); n < 1 || n > 100 {
			bad("title", "Title must be between 1 and 100 characters")
		}
		p.Title = t
	} else if create {
		bad("title", "Title is required")
	}

	if req.Description != nil {
		d := strings.TrimSpace(*req.Description)
		if n := utf8.RuneCountInString(d); n < 1 || n > 1000 {
			bad("description", "Description must be between 1 and 1000 characters")
		}
		p.Description = d
	} else if create {
		bad("description", "Description is required")
	}

	if req.Price != nil {
		if req.Price.IsNegative() {
			bad("price", "Price must be a positive number")
		}
		p.Price = req.Price.Round(2)
	} else if create {
		bad("price", "Price is required")
	}

	if req.Category != nil {
		c := domain.Category(strings.TrimSpace(*req.Category))
		if !c.Valid() {
			bad("category", "Invalid category")
		}
		p.Category = c
	} else if create {
		bad("category", "Category is required")
	}

	if req.Condition != nil && *req.Condition != "" {
		c := domain.Condition(strings.TrimSpace(*req.Condition))
		if !c.Valid() {
			bad("condition", "Invalid condition")
		}
		p.Condition = c
	}

	if loc := req.Location; loc != nil {
		if loc.City != nil {
			p.Location.City = strings.TrimSpace(*loc.City)
		}
		if loc.State != nil {
			p.Location.State = strings.TrimSpace(*loc.State)
		}
		if loc.Country != nil {
			p.Location.Country = strings.TrimSpace(*loc.Country)
		}
	}

	if req.Tags != nil {
		p.Tags = normalizeTags(req.Tags)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func normalizeTags(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func toProductImages(imgs []media.Image, start int) []models.ProductImage {
	out := make([]models.ProductImage, 0, len(imgs))
	for i, img := range imgs {
		out = append(out, models.ProductImage{URL: img.URL, PublicID: img.PublicID, Position: start + i})
	}
	return out
}

func fromProductImages(imgs []models.ProductImage) []media.Image {
	out := make([]media.Image, 0, len(imgs))
	for _, img := range imgs {
		out = append(out, media.Image{URL: img.URL, PublicID: img.PublicID})
	}
	return out
}
