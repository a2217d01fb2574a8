package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/omart/marketplace/internal/listing"
	"github.com/omart/marketplace/internal/models"
	"github.com/omart/marketplace/internal/repo"
)

type LocationRequest struct {
	City    *string `json:"city"    validate:"omitempty,max=100"`
	State   *string `json:"state"   validate:"omitempty,max=100"`
	Country *string `json:"country" validate:"omitempty,max=100"`
}

// ProductRequest serves both create and partial update; nil means "not sent".
type ProductRequest struct {
	Title       *string          `json:"title"       validate:"omitempty,max=100"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"    validate:"omitempty,category"`
	Condition   *string          `json:"condition"   validate:"omitempty,condition"`
	Location    *LocationRequest `json:"location"`
	Tags        []string         `json:"tags"        validate:"omitempty,max=20,dive,max=30"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type MarkSoldRequest struct {
	BuyerID *string `json:"buyerId" validate:"omitempty,uuid"`
}

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=50"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Phone    string `json:"phone"    validate:"omitempty,min=10,max=15"`
	Role     string `json:"role"     validate:"omitempty,oneof=buyer seller"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AddressRequest struct {
	Street  *string `json:"street"  validate:"omitempty,max=200"`
	City    *string `json:"city"    validate:"omitempty,max=100"`
	State   *string `json:"state"   validate:"omitempty,max=100"`
	ZipCode *string `json:"zipCode" validate:"omitempty,max=20"`
	Country *string `json:"country" validate:"omitempty,max=100"`
}

type ProfileRequest struct {
	Name    *string         `json:"name"    validate:"omitempty,min=2,max=50"`
	Phone   *string         `json:"phone"   validate:"omitempty,min=10,max=15"`
	Address *AddressRequest `json:"address"`
}

type ProductPage struct {
	Products   []models.Product   `json:"products"`
	Pagination listing.Pagination `json:"pagination"`
}

type AuthResponse struct {
	Message string       `json:"message,omitempty"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

type SellerProfile struct {
	Seller   SellerCard       `json:"seller"`
	Products []models.Product `json:"products"`
	Stats    repo.SellerStats `json:"stats"`
}

type SellerCard struct {
	models.Contact
	CreatedAt time.Time `json:"createdAt"`
}

type Dashboard struct {
	Stats repo.DashboardCounts `json:"stats"`
	repo.Recent
}
