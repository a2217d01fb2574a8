package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/omart/marketplace/internal/domain"
	"github.com/omart/marketplace/internal/listing"
	"github.com/omart/marketplace/internal/models"
)

func (r *GormRepo) ListPublicProducts(ctx context.Context, f listing.Filters) ([]models.Product, int64, error) {
	db := r.DB.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Product{}).
		Scopes(listing.Public(), listing.Match(f)).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]models.Product, 0, f.Limit)
	if err := db.Scopes(listing.Public(), listing.Match(f), listing.Sort(f), listing.Paginate(f), withSeller, withImages).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).
		Scopes(withSeller, withImages).
		Preload("Buyer").
		Where("id = ?", id).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// IncrementViews bumps view_count in SQL.
func (r *GormRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

var editableColumns = []string{
	"title", "description", "price", "category", "condition",
	"location_city", "location_state", "location_country", "tags", "search_tags",
}

// SaveProduct writes the scalar fields of p and appends extra images after the existing ones.
func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product, extra []models.ProductImage) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(p).
			Select(editableColumns).
			Omit(clause.Associations).
			Updates(p)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if len(extra) == 0 {
			return nil
		}
		start := len(p.Images)
		for i := range extra {
			extra[i].ProductID = p.ID
			extra[i].Position = start + i
		}
		return tx.Create(&extra).Error
	})
}

func (r *GormRepo) UpdateProductFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()
	res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListProducts returns products in any state, newest first.
// Zero sellerID or empty status mean no filter.
func (r *GormRepo) ListProducts(ctx context.Context, sellerID uuid.UUID, status domain.Status, page, limit int) ([]models.Product, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if sellerID != uuid.Nil {
			db = db.Where("seller_id = ?", sellerID)
		}
		if status != "" {
			db = db.Where("status = ?", status)
		}
		return db
	}

	db := r.DB.WithContext(ctx)
	var total int64
	if err := db.Model(&models.Product{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]models.Product, 0, limit)
	if err := db.Scopes(scope, withSeller, withImages).
		Order("created_at DESC").Order("id DESC").
		Offset(pageOffset(page, limit)).Limit(limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

type SellerStats struct {
	TotalProducts int64 `json:"totalProducts"`
	TotalViews    int64 `json:"totalViews"`
}

func (r *GormRepo) SellerStats(ctx context.Context, sellerID uuid.UUID) (SellerStats, error) {
	var s SellerStats
	err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Select("COUNT(*) AS total_products, COALESCE(SUM(view_count), 0) AS total_views").
		Where("seller_id = ? AND status = ?", sellerID, domain.StatusApproved).
		Scan(&s).Error
	return s, err
}

func (r *GormRepo) RecentPublicBySeller(ctx context.Context, sellerID uuid.UUID, n int) ([]models.Product, error) {
	items := make([]models.Product, 0, n)
	err := r.DB.WithContext(ctx).
		Scopes(listing.Public(), withImages).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").Order("id DESC").
		Limit(n).
		Find(&items).Error
	return items, err
}
