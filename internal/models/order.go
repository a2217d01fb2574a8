package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omart/marketplace/internal/domain"
)

type Order struct {
	ID              uuid.UUID            `gorm:"primaryKey"                                 json:"id"`
	OrderID         string               `gorm:"size:32;uniqueIndex;not null"               json:"orderId"`
	BuyerID         uuid.UUID            `gorm:"index;not null"                             json:"buyerId"`
	Buyer           *Contact             `gorm:"foreignKey:BuyerID"                         json:"buyer,omitempty"`
	SellerID        uuid.UUID            `gorm:"index;not null"                             json:"sellerId"`
	Seller          *Contact             `gorm:"foreignKey:SellerID"                        json:"seller,omitempty"`
	ProductID       uuid.UUID            `gorm:"index;not null"                             json:"productId"`
	Product         *Product             `gorm:"foreignKey:ProductID"                       json:"product,omitempty"`
	Amount          decimal.Decimal      `gorm:"type:decimal(12,2);not null"                json:"amount"`
	Status          domain.OrderStatus   `gorm:"size:16;not null;default:pending;index"     json:"status"`
	PaymentStatus   domain.PaymentStatus `gorm:"size:16;not null;default:pending;index"     json:"paymentStatus"`
	ShippingAddress Address              `gorm:"embedded;embeddedPrefix:shipping_"          json:"shippingAddress"`
	TrackingNumber  string               `gorm:"size:64"                                    json:"trackingNumber,omitempty"`
	Notes           string               `gorm:"size:500"                                   json:"notes,omitempty"`
	CreatedAt       time.Time            `gorm:"index"                                      json:"createdAt"`
	UpdatedAt       time.Time            `                                                  json:"updatedAt"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.OrderID == "" {
		id, err := NewOrderID(time.Now())
		if err != nil {
			return err
		}
		o.OrderID = id
	}
	return nil
}

const orderIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewOrderID builds ids of the form ORD-<unix millis>-<9 upper alnum>.
func NewOrderID(now time.Time) (string, error) {
	suffix := make([]byte, 9)
	max := big.NewInt(int64(len(orderIDAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("order id: %w", err)
		}
		suffix[i] = orderIDAlphabet[n.Int64()]
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix), nil
}
