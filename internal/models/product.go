package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omart/marketplace/internal/domain"
)

type Location struct {
	City    string `gorm:"size:100" json:"city,omitempty"`
	State   string `gorm:"size:100" json:"state,omitempty"`
	Country string `gorm:"size:100" json:"country,omitempty"`
}

type ProductImage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"  json:"-"`
	ProductID uuid.UUID `gorm:"index;not null"            json:"-"`
	Position  int       `gorm:"not null;default:0"        json:"-"`
	URL       string    `gorm:"not null"                  json:"url"`
	PublicID  string    `gorm:"not null"                  json:"publicId"`
}

type Product struct {
	ID              uuid.UUID        `gorm:"primaryKey"                                   json:"id"`
	Title           string           `gorm:"size:100;not null"                            json:"title"`
	Description     string           `gorm:"size:1000;not null"                           json:"description"`
	Price           decimal.Decimal  `gorm:"type:decimal(12,2);not null"                  json:"price"`
	Category        domain.Category  `gorm:"size:32;not null;index"                       json:"category"`
	Condition       domain.Condition `gorm:"size:16;not null;default:New"                 json:"condition"`
	Images          []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images"`
	SellerID        uuid.UUID        `gorm:"index;not null"                               json:"sellerId"`
	Seller          *Contact         `gorm:"foreignKey:SellerID"                          json:"seller,omitempty"`
	Status          domain.Status    `gorm:"size:16;not null;default:pending;index"       json:"status"`
	IsAvailable     bool             `gorm:"not null;default:true"                        json:"isAvailable"`
	Location        Location         `gorm:"embedded;embeddedPrefix:location_"            json:"location"`
	Tags            []string         `gorm:"serializer:json"                              json:"tags"`
	SearchTags      string           `gorm:"type:text;not null;default:''"                json:"-"`
	ViewCount       int64            `gorm:"not null;default:0"                           json:"viewCount"`
	RejectionReason string           `gorm:"size:500"                                     json:"rejectionReason,omitempty"`
	SoldAt          *time.Time       `                                                    json:"soldAt,omitempty"`
	BuyerID         *uuid.UUID       `gorm:"index"                                        json:"buyerId,omitempty"`
	Buyer           *Contact         `gorm:"foreignKey:BuyerID"                           json:"buyer,omitempty"`
	CreatedAt       time.Time        `gorm:"index"                                        json:"createdAt"`
	UpdatedAt       time.Time        `                                                    json:"updatedAt"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps search_tags as the lowercased tags, one per line.
func (p *Product) BeforeSave(*gorm.DB) error {
	p.SearchTags = joinSearchTags(p.Tags)
	return nil
}

func joinSearchTags(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}

func (p *Product) PrimaryImage() *ProductImage {
	if len(p.Images) == 0 {
		return nil
	}
	return &p.Images[0]
}
