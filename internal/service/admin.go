package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/omart/marketplace/internal/domain"
	"github.com/omart/marketplace/internal/models"
	"github.com/omart/marketplace/internal/repo"
	"github.com/omart/marketplace/internal/transport"
	"github.com/omart/marketplace/internal/util"
)

const dashboardRecent = 5

type AdminService struct {
	Repo *repo.GormRepo
}

func (s *AdminService) Dashboard(ctx context.Context) (*transport.Dashboard, error) {
	counts, err := s.Repo.DashboardCounts(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.Repo.Recent(ctx, dashboardRecent)
	if err != nil {
		return nil, err
	}
	return &transport.Dashboard{Stats: counts, Recent: recent}, nil
}

type UserPage struct {
	Users      []models.User   `json:"users"`
	Pagination util.Pagination `json:"pagination"`
}

func (s *AdminService) ListUsers(ctx context.Context, role domain.Role, page, limit int) (*UserPage, error) {
	if role != "" && !role.Valid() {
		return nil, invalid("role", "must be one of buyer, seller, admin")
	}
	users, total, err := s.Repo.ListUsers(ctx, role, page, limit)
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: users, Pagination: util.NewPagination(page, limit, total)}, nil
}

func (s *AdminService) ToggleUserStatus(ctx context.Context, actor domain.Actor, id uuid.UUID) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if actor.ID == id {
		return nil, fmt.Errorf("cannot deactivate your own account: %w", ErrValidation)
	}
	u, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		return nil, notFound("user", err)
	}
	u.IsActive = !u.IsActive
	if err := s.Repo.UpdateUser(ctx, u, "is_active"); err != nil {
		return nil, notFound("user", err)
	}
	return u, nil
}

type OrderPage struct {
	Orders     []models.Order  `json:"orders"`
	Pagination util.Pagination `json:"pagination"`
}

func (s *AdminService) ListOrders(ctx context.Context, status domain.OrderStatus, page, limit int) (*OrderPage, error) {
	if status != "" && !status.Valid() {
		return nil, invalid("status", "unknown order status")
	}
	orders, total, err := s.Repo.ListOrders(ctx, status, page, limit)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Orders: orders, Pagination: util.NewPagination(page, limit, total)}, nil
}
