package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/omart/marketplace/internal/domain"
	"github.com/omart/marketplace/internal/logging"
	"github.com/omart/marketplace/internal/models"
	"github.com/omart/marketplace/internal/service"
)

const (
	userKey  = "user"
	actorKey = "actor"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Middleware validates bearer tokens on every request and reloads the user.
type Middleware struct {
	Auth Authenticator
}

func New(a Authenticator) *Middleware {
	return &Middleware{Auth: a}
}

func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, nil)
}

func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, []domain.Role{domain.RoleAdmin})
}

// RequireRole admits only the listed roles.
func (m *Middleware) RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return m.require(next, roles)
	}
}

func (m *Middleware) require(next echo.HandlerFunc, roles []domain.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "auth")

		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "No token, authorization denied")
		}

		user, err := m.Auth.Authenticate(ctx, token)
		if err != nil {
			if errors.Is(err, service.ErrAccountDisabled) {
				l.Warn("auth_failed", "status", 401, "reason", "account disabled")
				return echo.NewHTTPError(http.StatusUnauthorized, "Account is deactivated")
			}
			if errors.Is(err, service.ErrUnauthorized) {
				l.Warn("auth_failed", "status", 401, "reason", "invalid token", "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "Token is not valid")
			}
			l.Error("auth_failed", "status", 500, "reason", "cannot load user", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Server error during authentication")
		}

		if len(roles) > 0 && !hasRole(user.Role, roles) {
			l.Warn("auth_failed", "status", 403, "reason", "role not allowed", "role", user.Role)
			return echo.NewHTTPError(http.StatusForbidden, accessDeniedMessage(roles))
		}

		c.Set(userKey, user)
		c.Set(actorKey, domain.Actor{ID: user.ID, Role: user.Role})
		c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, logging.FromContext(ctx).With("user_id", user.ID.String()))))
		return next(c)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func hasRole(r domain.Role, roles []domain.Role) bool {
	for _, want := range roles {
		if r == want {
			return true
		}
	}
	return false
}

func accessDeniedMessage(roles []domain.Role) string {
	if len(roles) == 1 && roles[0] == domain.RoleAdmin {
		return "Access denied. Admin privileges required."
	}
	return "Access denied. Seller privileges required."
}

// UserFrom returns the authenticated user, or nil outside RequireAuth.
func UserFrom(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}

func ActorFrom(c echo.Context) (domain.Actor, bool) {
	a, ok := c.Get(actorKey).(domain.Actor)
	return a, ok
}
