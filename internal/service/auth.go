package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omart/marketplace/internal/domain"
	"github.com/omart/marketplace/internal/hash"
	"github.com/omart/marketplace/internal/logging"
	"github.com/omart/marketplace/internal/models"
	"github.com/omart/marketplace/internal/repo"
	"github.com/omart/marketplace/internal/tokens"
	"github.com/omart/marketplace/internal/transport"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is deactivated")
)

type AuthService struct {
	Repo               *repo.GormRepo
	JWTSecret          []byte
	TokenTTL           time.Duration
	AllowedEmailDomain string
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*transport.AuthResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.Password) == "" || strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("name, email and password are required: %w", ErrValidation)
	}
	if d := strings.ToLower(s.AllowedEmailDomain); d != "" && !strings.HasSuffix(email, "@"+d) {
		return nil, invalid("email", "Only @"+d+" email addresses are allowed")
	}

	role := domain.Role(req.Role)
	if role == "" {
		role = domain.RoleBuyer
	}
	if role != domain.RoleBuyer && role != domain.RoleSeller {
		return nil, invalid("role", "Role must be buyer or seller")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: pwHash,
		Phone:        strings.TrimSpace(req.Phone),
		Role:         role,
		IsActive:     true,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fmt.Errorf("user already exists with this email: %w", ErrConflict)
		}
		return nil, err
	}

	return s.issue(&user, "User registered successfully")
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*transport.AuthResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, fmt.Errorf("email and password are required: %w", ErrValidation)
	}

	user, err := s.Repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrInvalidCredentials)
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "reason", "wrong password", "user_id", user.ID)
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrInvalidCredentials)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrAccountDisabled)
	}

	return s.issue(user, "Login successful")
}

// Authenticate resolves a bearer token to a live, active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := tokens.AccessClaimsFromToken(token, s.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrUnauthorized)
	}
	user, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrAccountDisabled)
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User, msg string) (*transport.AuthResponse, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	token, _, err := tokens.SignAccessToken(user.ID.String(), string(user.Role), s.JWTSecret, ttl)
	if err != nil {
		return nil, err
	}
	return &transport.AuthResponse{Message: msg, Token: token, User: user}, nil
}
