package models

import (
	"regexp"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/omart/marketplace/internal/domain"
)

func TestNewOrderID_Format(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(1700000000123)
	id, err := NewOrderID(now)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^ORD-1700000000123-[A-Z0-9]{9}$`), id)
}

func TestProduct_PersistsWithSellerContact(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}, &Product{}, &ProductImage{}, &Order{}))

	seller := User{Name: "Sam Seller", Email: "sam@example.com", PasswordHash: "x", Phone: "5551234567", Role: domain.RoleSeller, IsActive: true}
	require.NoError(t, db.Create(&seller).Error)
	require.NotEqual(t, uuid.Nil, seller.ID)

	p := Product{
		Title:       "Vintage Lamp",
		Description: "Brass lamp",
		Price:       decimal.RequireFromString("25.50"),
		Category:    "Other",
		Condition:   domain.ConditionNew,
		SellerID:    seller.ID,
		Status:      domain.StatusPending,
		IsAvailable: true,
		Tags:        []string{"lamp", "brass"},
		Images: []ProductImage{
			{URL: "https://img/1.jpg", PublicID: "mart/products/1", Position: 0},
			{URL: "https://img/2.jpg", PublicID: "mart/products/2", Position: 1},
		},
	}
	require.NoError(t, db.Create(&p).Error)

	var got Product
	require.NoError(t, db.Preload("Seller").
		Preload("Images", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Where("id = ?", p.ID).First(&got).Error)

	assert.True(t, got.Price.Equal(decimal.RequireFromString("25.5")))
	assert.Equal(t, []string{"lamp", "brass"}, got.Tags)
	require.NotNil(t, got.Seller)
	assert.Equal(t, "Sam Seller", got.Seller.Name)
	require.Len(t, got.Images, 2)
	assert.Equal(t, "mart/products/1", got.PrimaryImage().PublicID)

	o := Order{BuyerID: seller.ID, SellerID: seller.ID, ProductID: p.ID, Amount: p.Price}
	require.NoError(t, db.Create(&o).Error)
	assert.Regexp(t, `^ORD-\d+-[A-Z0-9]{9}$`, o.OrderID)
}
