package repo

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omart/marketplace/internal/domain"
	"github.com/omart/marketplace/internal/models"
)

func withOrderParties(db *gorm.DB) *gorm.DB {
	return db.Preload("Buyer").Preload("Seller").
		Preload("Product", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "title", "price", "status", "seller_id")
		})
}

func (r *GormRepo) ListOrders(ctx context.Context, status domain.OrderStatus, page, limit int) ([]models.Order, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if status != "" {
			return db.Where("status = ?", status)
		}
		return db
	}

	db := r.DB.WithContext(ctx)
	var total int64
	if err := db.Model(&models.Order{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]models.Order, 0, limit)
	if err := db.Scopes(scope, withOrderParties).
		Order("created_at DESC").Order("id DESC").
		Offset(pageOffset(page, limit)).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

type DashboardCounts struct {
	TotalUsers      int64           `json:"totalUsers"`
	TotalProducts   int64           `json:"totalProducts"`
	TotalOrders     int64           `json:"totalOrders"`
	PendingProducts int64           `json:"pendingProducts"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
}

func (r *GormRepo) DashboardCounts(ctx context.Context) (DashboardCounts, error) {
	db := r.DB.WithContext(ctx)
	var c DashboardCounts

	if err := db.Model(&models.User{}).Count(&c.TotalUsers).Error; err != nil {
		return c, err
	}
	if err := db.Model(&models.Product{}).Count(&c.TotalProducts).Error; err != nil {
		return c, err
	}
	if err := db.Model(&models.Order{}).Count(&c.TotalOrders).Error; err != nil {
		return c, err
	}
	if err := db.Model(&models.Product{}).Where("status = ?", domain.StatusPending).Count(&c.PendingProducts).Error; err != nil {
		return c, err
	}

	var revenue decimal.NullDecimal
	if err := db.Model(&models.Order{}).
		Select("SUM(amount)").
		Where("payment_status = ?", domain.PaymentPaid).
		Row().Scan(&revenue); err != nil {
		return c, err
	}
	if revenue.Valid {
		c.TotalRevenue = revenue.Decimal
	}
	return c, nil
}

type Recent struct {
	Users    []models.User    `json:"recentUsers"`
	Products []models.Product `json:"recentProducts"`
	Orders   []models.Order   `json:"recentOrders"`
}

func (r *GormRepo) Recent(ctx context.Context, n int) (Recent, error) {
	db := r.DB.WithContext(ctx)
	rec := Recent{
		Users:    make([]models.User, 0, n),
		Products: make([]models.Product, 0, n),
		Orders:   make([]models.Order, 0, n),
	}

	if err := db.Order("created_at DESC").Limit(n).Find(&rec.Users).Error; err != nil {
		return rec, err
	}
	if err := db.Scopes(withSeller).Order("created_at DESC").Limit(n).Find(&rec.Products).Error; err != nil {
		return rec, err
	}
	if err := db.Scopes(withOrderParties).Order("created_at DESC").Limit(n).Find(&rec.Orders).Error; err != nil {
		return rec, err
	}
	return rec, nil
}
