package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/omart/marketplace/internal/logging"
	authmw "github.com/omart/marketplace/internal/middleware/auth"
	"github.com/omart/marketplace/internal/service"
	"github.com/omart/marketplace/internal/transport"
)

const myProductsPageSize = 10

type UserHTTP struct {
	Users   *service.UserService
	Catalog *service.CatalogService
}

func (h *UserHTTP) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.profile")

	actor, _ := authmw.ActorFrom(c)
	u, err := h.Users.Profile(ctx, actor.ID)
	if err != nil {
		return serviceError(l, "profile_error", err, "User not found", "")
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

func (h *UserHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.update_profile")

	var req transport.ProfileRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "profile_update_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return serviceError(l, "profile_update_error", err, "", "")
	}

	actor, _ := authmw.ActorFrom(c)
	u, err := h.Users.UpdateProfile(ctx, actor.ID, req)
	if err != nil {
		return serviceError(l, "profile_update_error", err, "User not found", "")
	}

	l.Info("profile_update_success")
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated successfully", "user": u})
}

func (h *UserHTTP) MyProducts(c echo.Context) error {
	return sellerProducts(c, h.Catalog, "users.my_products", myProductsPageSize)
}

func (h *UserHTTP) SellerProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.seller_profile")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("seller_profile_error", "status", 404, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "Seller not found")
	}

	profile, err := h.Users.SellerProfile(ctx, id)
	if err != nil {
		return serviceError(l, "seller_profile_error", err, "Seller not found", "")
	}
	return c.JSON(http.StatusOK, profile)
}
