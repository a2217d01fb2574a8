package ready

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omart/marketplace/internal/logging"
)

type Pinger interface {
	Ready(ctx context.Context) error
}

// RequireDatabase answers 503 before the handler runs when the store cannot be reached.
func RequireDatabase(p Pinger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if err := p.Ready(ctx); err != nil {
				logging.FromContext(ctx).Warn("database_unavailable", "status", 503, "error", err)
				return c.JSON(http.StatusServiceUnavailable, echo.Map{
					"message": "Database connection not available. Please try again in a moment.",
					"error":   "Database unavailable",
				})
			}
			return next(c)
		}
	}
}
