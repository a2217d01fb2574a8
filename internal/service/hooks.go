package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/omart/marketplace/internal/domain"
	"github.com/omart/marketplace/internal/logging"
	"github.com/omart/marketplace/internal/models"
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, key string, event any) error
}

type Indexer interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	RemoveProduct(ctx context.Context, id uuid.UUID) error
}

type ListingCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Invalidate(ctx context.Context)
}

type Notifier interface {
	ProductApproved(ctx context.Context, to models.Contact, title string) error
	ProductRejected(ctx context.Context, to models.Contact, title, reason string) error
}

const (
	EventProductCreated  = "product_created"
	EventProductUpdated  = "product_updated"
	EventProductApproved = "product_approved"
	EventProductRejected = "product_rejected"
	EventProductSold     = "product_sold"
	EventProductDeleted  = "product_deleted"
)

type ProductEvent struct {
	Type      string        `json:"type"`
	ProductID uuid.UUID     `json:"productID"`
	SellerID  uuid.UUID     `json:"sellerID"`
	ActorID   uuid.UUID     `json:"actorID"`
	Title     string        `json:"title,omitempty"`
	Status    domain.Status `json:"status,omitempty"`
	At        time.Time     `json:"at"`
}

// Hooks fan product changes out to optional collaborators.
// Any of them may be nil; failures are logged and never surface to callers.
type Hooks struct {
	Events EventPublisher
	Index  Indexer
	Cache  ListingCache
	Notify Notifier
}

const hookTimeout = 5 * time.Second

func (h Hooks) productChanged(ctx context.Context, typ string, p *models.Product, actor domain.Actor) {
	l := logging.FromContext(ctx).With("svc", "catalog.hooks", "event", typ, "product_id", p.ID)

	if h.Cache != nil {
		h.Cache.Invalidate(ctx)
	}

	if h.Events != nil {
		ev := ProductEvent{
			Type:      typ,
			ProductID: p.ID,
			SellerID:  p.SellerID,
			ActorID:   actor.ID,
			Title:     p.Title,
			Status:    p.Status,
			At:        time.Now().UTC(),
		}
		pctx, cancel := context.WithTimeout(ctx, hookTimeout)
		if err := h.Events.PublishEvent(pctx, p.ID.String(), ev); err != nil {
			l.Error("publish_event_failed", "error", err)
		}
		cancel()
	}

	if h.Index != nil {
		ictx, cancel := context.WithTimeout(ctx, hookTimeout)
		var err error
		if typ != EventProductDeleted && domain.Listable(p.Status, p.IsAvailable) {
			err = h.Index.IndexProduct(ictx, p)
		} else {
			err = h.Index.RemoveProduct(ictx, p.ID)
		}
		cancel()
		if err != nil {
			l.Error("search_index_sync_failed", "error", err)
		}
	}
}

func (h Hooks) notifyDecision(ctx context.Context, p *models.Product) {
	if h.Notify == nil || p.Seller == nil || p.Seller.Email == "" {
		return
	}
	l := logging.FromContext(ctx).With("svc", "catalog.notify", "product_id", p.ID)

	nctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var err error
	switch p.Status {
	case domain.StatusApproved:
		err = h.Notify.ProductApproved(nctx, *p.Seller, p.Title)
	case domain.StatusRejected:
		err = h.Notify.ProductRejected(nctx, *p.Seller, p.Title, p.RejectionReason)
	default:
		return
	}
	if err != nil {
		l.Warn("notify_seller_failed", "status", p.Status, "error", err)
	}
}
