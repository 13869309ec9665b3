// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinexplorer/internal/config"
	"github.com/iliyamo/cinexplorer/internal/handler"
	"github.com/iliyamo/cinexplorer/internal/middleware"
)

// Deps carries everything the routes need. Redis may be nil, which turns
// off caching and rate limiting.
type Deps struct {
	Auth      *handler.AuthHandler
	Public    *handler.PublicHandler
	Customer  *handler.CustomerHandler
	JWTSecret string
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Ready     map[string]handler.Pinger
	Logger    *slog.Logger
}

// New builds the Echo instance with every route registered.
func New(d Deps) *echo.Echo {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(d.Logger)
	e.Use(echomw.Recover(), middleware.RequestID(), middleware.Logging(d.Logger))

	limiter := middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Logger)
	RegisterRoutes(e, d.Ready)
	RegisterAuth(e, d.Auth, d.JWTSecret, limiter)
	RegisterPublic(e, d.Public, middleware.NewRedisCache(d.Cache, d.Redis, d.Logger))
	RegisterCustomer(e, d.Customer, d.JWTSecret, limiter)
	return e
}

// RegisterRoutes registers the probes.
func RegisterRoutes(e *echo.Echo, ready map[string]handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(ready))
}

// RegisterAuth registers the token endpoints under /v1/auth, all behind the
// rate limiter, and the protected profile endpoint.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limiter)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// logout accepts a refresh token or a bearer access token, so it sits
	// outside the JWT group
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.Shopper(jwtSecret)...)
}

// RegisterPublic registers the unauthenticated browse endpoints. GETs go
// through the response cache, which skips the routes that change on every
// sale.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)
	g.GET("/cinemas", p.ListCinemas)
	g.GET("/cinemas/:id/sessions", p.CinemaSessions)
	g.GET("/sessions/:id", p.Session)
	g.GET("/sessions/:id/seats", p.SeatMap)
	e.GET("/v1/sessions/:id/live", p.Live)
}

// RegisterCustomer registers the shopper endpoints. All of them need a valid
// access token with role USER or ADMIN; checkout is also rate limited.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	auth := middleware.Shopper(jwtSecret)
	g := e.Group("/v1/sessions/:id", auth...)
	g.GET("/cart", h.GetCart)
	g.POST("/cart/toggle", h.Toggle)
	g.PUT("/cart/ticket-types", h.SetTicketTypes)
	g.DELETE("/cart", h.ClearCart)
	g.GET("/quote", h.Quote)
	g.POST("/checkout", h.Checkout, limiter)

	e.GET("/v1/my-tickets", h.MyTickets, auth...)
}
