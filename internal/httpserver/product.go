package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/omart/marketplace/internal/domain"
	"github.com/omart/marketplace/internal/listing"
	"github.com/omart/marketplace/internal/logging"
	"github.com/omart/marketplace/internal/media"
	authmw "github.com/omart/marketplace/internal/middleware/auth"
	"github.com/omart/marketplace/internal/service"
	"github.com/omart/marketplace/internal/transport"
)

const uploadBodyLimit = media.MaxImages*media.DefaultMaxBytes + 1<<20

type ProductHTTP struct {
	Svc           *service.CatalogService
	StrictFilters bool
	MaxUpload     int64
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	f, problems := listing.ParseFilters(c.QueryParams())
	if len(problems) > 0 {
		if h.StrictFilters {
			l.Warn("get_products_error", "status", 400, "reason", "invalid filters", "problems", len(problems))
			return validationError(&service.ValidationError{Fields: problems})
		}
		l.Debug("get_products_filters_dropped", "problems", problems)
	}

	page, err := h.Svc.ListProducts(ctx, f)
	if err != nil {
		l.Error("get_products_error", "status", 500, "reason", "cannot list products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error while fetching products")
	}

	l.Info("get_products_success", "total", page.Pagination.TotalProducts)
	return c.JSON(http.StatusOK, page)
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_product_error", "status", 404, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}

	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_product_error", "status", 404, "reason", "product not found")
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("get_product_error", "status", 500, "reason", "cannot get product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error while fetching product")
	}

	return c.JSON(http.StatusOK, p)
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	actor, _ := authmw.ActorFrom(c)
	h.limitUpload(c)

	req, files, err := bindProduct(c)
	if err != nil {
		return badBody(l, "product_create_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return serviceError(l, "product_create_error", err, "", "")
	}

	p, err := h.Svc.CreateProduct(ctx, actor, req, files)
	if err != nil {
		return serviceError(l, "product_create_error", err, "Product not found", "Access denied. Seller privileges required.")
	}

	l.Info("product_create_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, echo.Map{"message": "Product created successfully", "product": p})
}

func (h *ProductHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("product_update_error", "status", 404, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}
	actor, _ := authmw.ActorFrom(c)
	h.limitUpload(c)

	req, files, err := bindProduct(c)
	if err != nil {
		return badBody(l, "product_update_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return serviceError(l, "product_update_error", err, "", "")
	}

	p, err := h.Svc.UpdateProduct(ctx, actor, id, req, files)
	if err != nil {
		return serviceError(l, "product_update_error", err, "Product not found", "Not authorized to update this product")
	}

	l.Info("product_update_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Product updated successfully", "product": p})
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("product_delete_error", "status", 404, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}
	actor, _ := authmw.ActorFrom(c)

	if err := h.Svc.DeleteProduct(ctx, actor, id); err != nil {
		return serviceError(l, "product_delete_error", err, "Product not found", "Not authorized to delete this product")
	}

	l.Info("product_delete_success", "product_id", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}

func (h *ProductHTTP) MarkSold(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.mark_sold")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("product_mark_sold_error", "status", 404, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}
	actor, _ := authmw.ActorFrom(c)

	var req transport.MarkSoldRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "product_mark_sold_error", err)
	}
	if err := c.Validate(&req); err != nil {
		return serviceError(l, "product_mark_sold_error", err, "", "")
	}

	var buyerID *uuid.UUID
	if req.BuyerID != nil && *req.BuyerID != "" {
		bid, err := uuid.Parse(*req.BuyerID)
		if err != nil {
			return badBody(l, "product_mark_sold_error", err)
		}
		buyerID = &bid
	}

	p, err := h.Svc.MarkSold(ctx, actor, id, buyerID)
	if err != nil {
		return serviceError(l, "product_mark_sold_error", err, "Product not found", "Not authorized to update this product")
	}

	l.Info("product_mark_sold_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Product marked as sold", "product": p})
}

func (h *ProductHTTP) MyProducts(c echo.Context) error {
	return sellerProducts(c, h.Svc, "product.my_products", myProductsPageSize)
}

// sellerProducts is shared by the products and users routes.
func sellerProducts(c echo.Context, svc *service.CatalogService, name string, defLimit int) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", name)

	actor, _ := authmw.ActorFrom(c)
	page, limit := pageParams(c, defLimit)

	res, err := svc.SellerProducts(ctx, actor, domain.Status(c.QueryParam("status")), page, limit)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return serviceError(l, "my_products_error", err, "", "")
		}
		l.Error("my_products_error", "status", 500, "reason", "cannot list products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error while fetching products")
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ProductHTTP) limitUpload(c echo.Context) {
	max := h.MaxUpload
	if max <= 0 {
		max = uploadBodyLimit
	}
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, max)
}

func badBody(l *slog.Logger, event string, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		l.Warn(event, "status", 400, "reason", "invalid field", "error", err)
		return validationError(err)
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		l.Warn(event, "status", 400, "reason", "body too large", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "File too large. Maximum size is 5MB.")
	}
	l.Warn(event, "status", 400, "reason", "invalid body", "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
}
