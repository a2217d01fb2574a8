package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/omart/marketplace/internal/domain"
	"github.com/omart/marketplace/internal/listing"
	"github.com/omart/marketplace/internal/models"
	"github.com/omart/marketplace/internal/repo"
	"github.com/omart/marketplace/internal/transport"
)

type ModerationService struct {
	Repo  *repo.GormRepo
	Hooks Hooks
}

func (s *ModerationService) Approve(ctx context.Context, actor domain.Actor, id uuid.UUID) (*models.Product, error) {
	return s.decide(ctx, actor, id, domain.EventApprove, "")
}

func (s *ModerationService) Reject(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*models.Product, error) {
	return s.decide(ctx, actor, id, domain.EventReject, strings.TrimSpace(reason))
}

func (s *ModerationService) decide(ctx context.Context, actor domain.Actor, id uuid.UUID, ev domain.Event, reason string) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound("product", err)
	}
	next, err := domain.Transition(p.Status, ev, actor, p.SellerID, reason)
	if err != nil {
		return nil, mapDomain(err)
	}

	if err := s.Repo.UpdateProductFields(ctx, id, map[string]any{
		"status":           next,
		"rejection_reason": reason,
	}); err != nil {
		return nil, notFound("product", err)
	}
	p.Status = next
	p.RejectionReason = reason

	typ := EventProductApproved
	if next == domain.StatusRejected {
		typ = EventProductRejected
	}
	s.Hooks.productChanged(ctx, typ, p, actor)
	s.Hooks.notifyDecision(ctx, p)
	return p, nil
}

func (s *ModerationService) ListProducts(ctx context.Context, status domain.Status, page, limit int) (*transport.ProductPage, error) {
	if status != "" && !status.Valid() {
		return nil, invalid("status", "must be one of pending, approved, rejected, sold")
	}
	items, total, err := s.Repo.ListProducts(ctx, uuid.Nil, status, page, limit)
	if err != nil {
		return nil, err
	}
	return &transport.ProductPage{Products: items, Pagination: listing.NewPagination(page, limit, total)}, nil
}
