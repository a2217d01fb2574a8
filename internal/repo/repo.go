package repo

import (
	"gorm.io/gorm"
)

type GormRepo struct {
	DB *gorm.DB
}

func withImages(db *gorm.DB) *gorm.DB {
	return db.Preload("Images", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC").Order("id ASC")
	})
}

func withSeller(db *gorm.DB) *gorm.DB {
	return db.Preload("Seller")
}

func pageOffset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
