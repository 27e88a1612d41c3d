package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // Echo web framework used for routing

    "github.com/MM-miles16/MMMILES/internal/handler"    // handlers implementing the endpoints
    "github.com/MM-miles16/MMMILES/internal/middleware" // JWT auth, roles, rate limiting and response cache
    "github.com/MM-miles16/MMMILES/internal/model"      // role constants for operator routes
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check
// used by load balancers to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the phone+OTP login endpoints under /v1/auth.
// Both sit behind the rate limiter: send-otp triggers an outbound
// message per call and verify-otp is the brute-force surface.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
    g := e.Group("/v1/auth", limiter)
    g.POST("/send-otp", a.SendOTP)
    g.POST("/verify-otp", a.VerifyOTP)
}

// RegisterPublic registers the guest-accessible storefront endpoints:
// vehicle search (behind the response cache), vehicle detail and quote,
// coupon validation, the host intake form, and the read-only lock query
// the car detail page polls for availability.
func RegisterPublic(e *echo.Echo, v *handler.VehicleHandler, cp *handler.CouponHandler, hh *handler.HostHandler, lh *handler.LockHandler, cache echo.MiddlewareFunc) {
    e.GET("/v1/vehicles", v.Search, cache)
    e.GET("/v1/vehicles/:id", v.Get)
    e.GET("/v1/vehicles/:id/quote", v.Quote)
    e.POST("/v1/coupons/validate", cp.Validate)
    e.POST("/v1/host-applications", hh.Apply)
    e.GET("/v1/locks", lh.Query)
}

// RegisterProtected registers everything that needs a valid access
// token: lock acquire/release, booking checkout and listing, the profile
// endpoints, and the operator-only routes (cleanup trigger, host
// application review), which additionally require the ADMIN role.
// JWTAuth runs before the rate limiter so buckets key on the
// authenticated user.
func RegisterProtected(e *echo.Echo, lh *handler.LockHandler, bh *handler.BookingHandler, ph *handler.ProfileHandler, hh *handler.HostHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
    g := e.Group("/v1")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(limiter)

    g.POST("/locks", lh.Acquire)
    g.DELETE("/locks", lh.Release)

    g.POST("/bookings", bh.Create)
    g.GET("/bookings", bh.List)

    g.GET("/me", ph.Me)
    g.PUT("/me", ph.Update)

    admin := middleware.RequireRole(model.RoleAdmin)
    g.POST("/locks/cleanup", lh.Cleanup, admin)
    g.GET("/host-applications/:id", hh.Get, admin)
}
