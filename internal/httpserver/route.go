package httpserver

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/omart/marketplace/internal/domain"
	authmw "github.com/omart/marketplace/internal/middleware/auth"
	loggingmw "github.com/omart/marketplace/internal/middleware/logging"
	readymw "github.com/omart/marketplace/internal/middleware/ready"
)

const (
	jsonBodyLimit   = "10M"
	rateLimitWindow = 15 * time.Minute
)

type Deps struct {
	Logger *slog.Logger
	DB     Pinger
	Auth   *authmw.Middleware

	Products    *ProductHTTP
	Admin       *AdminHTTP
	Users       *UserHTTP
	AuthHandler *AuthHTTP
	Search      *SearchHTTP

	CORSOrigins       []string
	Production        bool
	Development       bool
	RateLimitPer15Min int
}

// New builds the echo instance with the middleware stack and every route.
func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler(d.Development)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(d.Logger))
	e.Use(echomw.Secure())
	e.Use(echomw.CORSWithConfig(corsConfig(d.CORSOrigins, d.Production)))
	if d.RateLimitPer15Min > 0 {
		e.Use(rateLimiter(d.RateLimitPer15Min))
	}
	e.Use(echomw.BodyLimitWithConfig(echomw.BodyLimitConfig{
		Limit:   jsonBodyLimit,
		Skipper: isMultipart,
	}))

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", root)
	e.GET("/api/health", health(d.DB))
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", ready(d.DB))

	api := e.Group("/api", readymw.RequireDatabase(d.DB))
	sellerOnly := d.Auth.RequireRole(domain.RoleSeller, domain.RoleAdmin)

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/me", d.AuthHandler.Me, d.Auth.RequireAuth)

	products := api.Group("/products")
	products.GET("", d.Products.GetProducts)
	products.GET("/search", d.Search.Search)
	products.GET("/seller/my-products", d.Products.MyProducts, sellerOnly)
	products.GET("/:id", d.Products.GetProduct)
	products.POST("", d.Products.CreateProduct, sellerOnly)
	products.PUT("/:id", d.Products.UpdateProduct, d.Auth.RequireAuth)
	products.DELETE("/:id", d.Products.DeleteProduct, d.Auth.RequireAuth)
	products.PUT("/:id/mark-sold", d.Products.MarkSold, d.Auth.RequireAuth)

	users := api.Group("/users")
	users.GET("/profile", d.Users.Profile, d.Auth.RequireAuth)
	users.PUT("/profile", d.Users.UpdateProfile, d.Auth.RequireAuth)
	users.GET("/my-products", d.Users.MyProducts, d.Auth.RequireAuth)
	users.GET("/seller/:id", d.Users.SellerProfile)

	admin := api.Group("/admin", d.Auth.RequireAdmin)
	admin.GET("/dashboard", d.Admin.Dashboard)
	admin.GET("/products", d.Admin.ListProducts)
	admin.PUT("/products/:id/approve", d.Admin.ApproveProduct)
	admin.PUT("/products/:id/reject", d.Admin.RejectProduct)
	admin.DELETE("/products/:id", d.Admin.DeleteProduct)
	admin.GET("/users", d.Admin.ListUsers)
	admin.PUT("/users/:id/toggle-status", d.Admin.ToggleUserStatus)
	admin.GET("/orders", d.Admin.ListOrders)
}

// corsConfig admits the configured origins; outside production any origin is allowed.
func corsConfig(origins []string, production bool) echomw.CORSConfig {
	return echomw.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			return slices.Contains(origins, origin) || !production, nil
		},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}
}

func rateLimiter(perWindow int) echo.MiddlewareFunc {
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perWindow) / rateLimitWindow.Seconds()),
		Burst:     perWindow,
		ExpiresIn: rateLimitWindow,
	})
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests from this IP, please try again later.")
		},
	})
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}
