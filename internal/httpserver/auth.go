package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omart/marketplace/internal/logging"
	authmw "github.com/omart/marketplace/internal/middleware/auth"
	"github.com/omart/marketplace/internal/service"
	"github.com/omart/marketplace/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "register_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return serviceError(l, "register_error", err, "", "")
	}

	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		return serviceError(l, "register_error", err, "", "")
	}

	l.Info("register_success", "user_id", res.User.ID)
	return c.JSON(http.StatusCreated, res)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "login_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return serviceError(l, "login_error", err, "", "")
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return serviceError(l, "login_error", err, "", "")
	}

	l.Info("login_success", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"user": authmw.UserFrom(c)})
}
