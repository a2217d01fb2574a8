package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/omart/marketplace/internal/models"
	"github.com/omart/marketplace/internal/repo"
	"github.com/omart/marketplace/internal/transport"
)

const sellerShowcaseSize = 6

type UserService struct {
	Repo *repo.GormRepo
}

func (s *UserService) Profile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		return nil, notFound("user", err)
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req transport.ProfileRequest) (*models.User, error) {
	u, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		return nil, notFound("user", err)
	}

	var cols []string
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		name := strings.TrimSpace(*req.Name)
		if n := len([]rune(name)); n < 2 || n > 50 {
			return nil, invalid("name", "Name must be between 2 and 50 characters")
		}
		u.Name = name
		cols = append(cols, "name")
	}
	if req.Phone != nil && strings.TrimSpace(*req.Phone) != "" {
		phone := strings.TrimSpace(*req.Phone)
		if n := len(phone); n < 10 || n > 15 {
			return nil, invalid("phone", "Phone must be between 10 and 15 characters")
		}
		u.Phone = phone
		cols = append(cols, "phone")
	}
	if a := req.Address; a != nil {
		set := func(dst *string, src *string, col string) {
			if src != nil {
				*dst = strings.TrimSpace(*src)
				cols = append(cols, col)
			}
		}
		set(&u.Address.Street, a.Street, "address_street")
		set(&u.Address.City, a.City, "address_city")
		set(&u.Address.State, a.State, "address_state")
		set(&u.Address.ZipCode, a.ZipCode, "address_zip_code")
		set(&u.Address.Country, a.Country, "address_country")
	}

	if len(cols) == 0 {
		return u, nil
	}
	if err := s.Repo.UpdateUser(ctx, u, cols...); err != nil {
		return nil, notFound("user", err)
	}
	return u, nil
}

func (s *UserService) SellerProfile(ctx context.Context, sellerID uuid.UUID) (*transport.SellerProfile, error) {
	u, err := s.Repo.GetUser(ctx, sellerID)
	if err != nil {
		return nil, notFound("seller", err)
	}
	products, err := s.Repo.RecentPublicBySeller(ctx, sellerID, sellerShowcaseSize)
	if err != nil {
		return nil, err
	}
	stats, err := s.Repo.SellerStats(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return &transport.SellerProfile{
		Seller: transport.SellerCard{
			Contact:   models.Contact{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone},
			CreatedAt: u.CreatedAt,
		},
		Products: products,
		Stats:    stats,
	}, nil
}
