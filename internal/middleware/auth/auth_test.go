package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omart/marketplace/internal/domain"
	"github.com/omart/marketplace/internal/models"
	"github.com/omart/marketplace/internal/service"
)

type fakeAuth map[string]*models.User

func (f fakeAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	switch token {
	case "disabled":
		return nil, fmt.Errorf("%w: %w", service.ErrUnauthorized, service.ErrAccountDisabled)
	case "broken":
		return nil, fmt.Errorf("db down")
	}
	if u, ok := f[token]; ok {
		return u, nil
	}
	return nil, service.ErrUnauthorized
}

func TestBearerToken(t *testing.T) {
	tok, ok := bearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	tok, ok = bearerToken("bearer   xyz ")
	assert.True(t, ok)
	assert.Equal(t, "xyz", tok)

	for _, h := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc"} {
		_, ok := bearerToken(h)
		assert.False(t, ok, h)
	}
}

func TestMiddleware(t *testing.T) {
	seller := &models.User{ID: uuid.New(), Role: domain.RoleSeller}
	admin := &models.User{ID: uuid.New(), Role: domain.RoleAdmin}
	mw := New(fakeAuth{"seller": seller, "admin": admin})

	e := echo.New()
	handler := func(c echo.Context) error {
		a, ok := ActorFrom(c)
		require.True(t, ok)
		assert.Equal(t, UserFrom(c).ID, a.ID)
		return c.String(http.StatusOK, string(a.Role))
	}
	e.GET("/me", handler, mw.RequireAuth)
	e.GET("/admin", handler, mw.RequireAdmin)
	e.GET("/sell", handler, mw.RequireRole(domain.RoleSeller, domain.RoleAdmin))

	tests := []struct {
		path, token string
		wantCode    int
		wantBody    string
	}{
		{"/me", "", http.StatusUnauthorized, "No token"},
		{"/me", "nope", http.StatusUnauthorized, "Token is not valid"},
		{"/me", "disabled", http.StatusUnauthorized, "Account is deactivated"},
		{"/me", "broken", http.StatusInternalServerError, "Server error"},
		{"/me", "seller", http.StatusOK, "seller"},
		{"/admin", "seller", http.StatusForbidden, "Admin privileges required"},
		{"/admin", "admin", http.StatusOK, "admin"},
		{"/sell", "admin", http.StatusOK, "admin"},
		{"/sell", "seller", http.StatusOK, "seller"},
	}
	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.token, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
