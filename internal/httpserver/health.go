package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Pinger interface {
	Ready(ctx context.Context) error
}

func health(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		status := "connected"
		if err := db.Ready(c.Request().Context()); err != nil {
			status = "disconnected"
		}
		return c.JSON(http.StatusOK, echo.Map{
			"status":    "OK",
			"message":   "Server is running",
			"database":  status,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	}
}

func ready(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := db.Ready(c.Request().Context()); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	}
}

func root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "O Mart API Server",
		"status":  "running",
		"version": "1.0.0",
		"endpoints": echo.Map{
			"health":   "/api/health",
			"auth":     "/api/auth",
			"products": "/api/products",
			"users":    "/api/users",
			"admin":    "/api/admin",
		},
	})
}
