package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/omart/marketplace/internal/listing"
	"github.com/omart/marketplace/internal/util"
)

// pageParams reads page and limit, clamped the same way as the public listing.
func pageParams(c echo.Context, defLimit int) (int, int) {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	limit := util.ParseIntDefault(c.QueryParam("limit"), defLimit)
	return util.ClampPage(page, limit, defLimit, listing.MaxLimit, listing.MaxPage)
}
