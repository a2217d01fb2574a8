package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omart/marketplace/internal/domain"
	"github.com/omart/marketplace/internal/models"
)

var ErrUserAlreadyExist = errors.New("user already exist")

func (r *GormRepo) CreateUserIfNotExists(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	tx := r.DB.WithContext(ctx).Where("email = ?", u.Email).FirstOrCreate(u)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrUserAlreadyExist
	}
	return nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) UpdateUser(ctx context.Context, u *models.User, columns ...string) error {
	res := r.DB.WithContext(ctx).Model(u).Select(columns).Updates(u)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListUsers filters by role; RoleBuyer matches every non-admin account.
func (r *GormRepo) ListUsers(ctx context.Context, role domain.Role, page, limit int) ([]models.User, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		switch role {
		case "":
			return db
		case domain.RoleBuyer:
			return db.Where("role <> ?", domain.RoleAdmin)
		default:
			return db.Where("role = ?", role)
		}
	}

	db := r.DB.WithContext(ctx)
	var total int64
	if err := db.Model(&models.User{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	users := make([]models.User, 0, limit)
	if err := db.Scopes(scope).
		Order("created_at DESC").Order("id DESC").
		Offset(pageOffset(page, limit)).Limit(limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
