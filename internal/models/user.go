package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omart/marketplace/internal/domain"
)

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

type User struct {
	ID           uuid.UUID   `gorm:"primaryKey"                                 json:"id"`
	Name         string      `gorm:"size:50;not null"                           json:"name"`
	Email        string      `gorm:"size:255;uniqueIndex;not null"              json:"email"`
	PasswordHash string      `gorm:"not null"                                   json:"-"`
	Phone        string      `gorm:"size:20"                                    json:"phone,omitempty"`
	Role         domain.Role `gorm:"size:16;not null;default:buyer;index"       json:"role"`
	Address      Address     `gorm:"embedded;embeddedPrefix:address_"           json:"address"`
	IsActive     bool        `gorm:"not null;default:true"                      json:"isActive"`
	CreatedAt    time.Time   `gorm:"index"                                      json:"createdAt"`
	UpdatedAt    time.Time   `                                                  json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Contact is the public projection of a user attached to products and orders.
type Contact struct {
	ID    uuid.UUID `gorm:"primaryKey" json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone,omitempty"`
}

func (Contact) TableName() string { return "users" }
