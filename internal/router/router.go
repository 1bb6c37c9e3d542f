// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-booking-api/internal/config"
	"github.com/iliyamo/event-booking-api/internal/handler"
	"github.com/iliyamo/event-booking-api/internal/middleware"
	"github.com/iliyamo/event-booking-api/internal/model"
)

// Deps carries everything route registration needs.
type Deps struct {
	Cfg      config.Config
	Auth     *handler.AuthHandler
	Events   *handler.EventHandler
	Bookings *handler.BookingHandler
	Redis    *redis.Client
}

// Register sets up the full route table. Public browse endpoints are cached
// and rate limited; booking and admin endpoints require a valid access token.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis)

	// Session endpoints. Logout works with a refresh token in the body and
	// needs no JWT.
	auth := e.Group("/v1/auth", rateLimit)
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)

	// Public catalog. Guests can browse events and check seat availability
	// without an account.
	public := e.Group("/v1", rateLimit, cache)
	public.GET("/events", d.Events.List)
	public.GET("/events/:id", d.Events.Get)
	public.GET("/events/:id/availability", d.Events.Availability)

	// Authenticated surface.
	user := e.Group("/v1", rateLimit, middleware.JWTAuth(d.Cfg.JWTSecret))
	user.GET("/me", d.Auth.Me)
	user.POST("/bookings", d.Bookings.Reserve)
	user.GET("/bookings", d.Bookings.ListMine)
	user.GET("/bookings/:id", d.Bookings.Get)
	user.DELETE("/bookings/:id", d.Bookings.Cancel)

	// Admin surface: event management and per-event reporting.
	admin := e.Group("/v1/admin", rateLimit,
		middleware.JWTAuth(d.Cfg.JWTSecret),
		middleware.RequireRole(model.RoleAdmin))
	admin.POST("/events", d.Events.Create)
	admin.PATCH("/events/:id", d.Events.Update)
	admin.DELETE("/events/:id", d.Events.Deactivate)
	admin.GET("/events/:id/bookings", d.Events.EventBookings)
	admin.GET("/events/:id/stats", d.Events.EventStats)
}
