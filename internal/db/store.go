package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrUnavailable = errors.New("database unavailable")

// Store wraps the gorm handle and reports whether the pool can serve queries.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Ready(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return ErrUnavailable
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
