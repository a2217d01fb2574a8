package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/omart/marketplace/internal/domain"
	"github.com/omart/marketplace/internal/logging"
	authmw "github.com/omart/marketplace/internal/middleware/auth"
	"github.com/omart/marketplace/internal/service"
	"github.com/omart/marketplace/internal/transport"
)

const adminPageSize = 20

type AdminHTTP struct {
	Admin      *service.AdminService
	Moderation *service.ModerationService
	Catalog    *service.CatalogService
}

func (h *AdminHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.dashboard")

	d, err := h.Admin.Dashboard(ctx)
	if err != nil {
		l.Error("dashboard_error", "status", 500, "reason", "cannot aggregate dashboard", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error while fetching dashboard data")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *AdminHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_products")

	page, limit := pageParams(c, adminPageSize)
	res, err := h.Moderation.ListProducts(ctx, domain.Status(c.QueryParam("status")), page, limit)
	if err != nil {
		return serviceError(l, "admin_list_products_error", err, "", "")
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AdminHTTP) ApproveProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.approve_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("approve_product_error", "status", 404, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}
	actor, _ := authmw.ActorFrom(c)

	p, err := h.Moderation.Approve(ctx, actor, id)
	if err != nil {
		return serviceError(l, "approve_product_error", err, "Product not found", "Access denied. Admin privileges required.")
	}

	l.Info("approve_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Product approved successfully", "product": p})
}

func (h *AdminHTTP) RejectProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.reject_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("reject_product_error", "status", 404, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}
	actor, _ := authmw.ActorFrom(c)

	var req transport.RejectRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "reject_product_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return serviceError(l, "reject_product_error", err, "", "")
	}

	p, err := h.Moderation.Reject(ctx, actor, id, req.Reason)
	if err != nil {
		return serviceError(l, "reject_product_error", err, "Product not found", "Access denied. Admin privileges required.")
	}

	l.Info("reject_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Product rejected successfully", "product": p})
}

func (h *AdminHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("admin_delete_product_error", "status", 404, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}
	actor, _ := authmw.ActorFrom(c)

	if err := h.Catalog.DeleteProduct(ctx, actor, id); err != nil {
		return serviceError(l, "admin_delete_product_error", err, "Product not found", "Access denied. Admin privileges required.")
	}

	l.Info("admin_delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}

func (h *AdminHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_users")

	page, limit := pageParams(c, adminPageSize)
	res, err := h.Admin.ListUsers(ctx, domain.Role(c.QueryParam("role")), page, limit)
	if err != nil {
		return serviceError(l, "admin_list_users_error", err, "", "")
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AdminHTTP) ToggleUserStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.toggle_user_status")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("toggle_user_status_error", "status", 404, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	actor, _ := authmw.ActorFrom(c)

	u, err := h.Admin.ToggleUserStatus(ctx, actor, id)
	if err != nil {
		if actor.ID == id {
			l.Warn("toggle_user_status_error", "status", 400, "reason", "self deactivation")
			return echo.NewHTTPError(http.StatusBadRequest, "Cannot deactivate your own account")
		}
		return serviceError(l, "toggle_user_status_error", err, "User not found", "Access denied. Admin privileges required.")
	}

	verb := "deactivated"
	if u.IsActive {
		verb = "activated"
	}
	l.Info("toggle_user_status_success", "user_id", u.ID, "active", u.IsActive)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "User " + verb + " successfully",
		"user": echo.Map{
			"id":       u.ID,
			"name":     u.Name,
			"email":    u.Email,
			"role":     u.Role,
			"isActive": u.IsActive,
		},
	})
}

func (h *AdminHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_orders")

	page, limit := pageParams(c, adminPageSize)
	res, err := h.Admin.ListOrders(ctx, domain.OrderStatus(c.QueryParam("status")), page, limit)
	if err != nil {
		return serviceError(l, "admin_list_orders_error", err, "", "")
	}
	return c.JSON(http.StatusOK, res)
}
