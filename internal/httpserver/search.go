package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omart/marketplace/internal/listing"
	"github.com/omart/marketplace/internal/logging"
	"github.com/omart/marketplace/internal/service"
	"github.com/omart/marketplace/internal/util"
)

type SearchHTTP struct {
	Svc *service.SearchService
}

func (h *SearchHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	limit := util.ParseIntDefault(c.QueryParam("limit"), listing.DefaultLimit)

	res, err := h.Svc.Search(ctx, c.QueryParam("q"), page, limit)
	if err != nil {
		return serviceError(l, "search_error", err, "", "")
	}

	l.Info("search_success", "total", res.Pagination.TotalProducts)
	return c.JSON(http.StatusOK, res)
}
