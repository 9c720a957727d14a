package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/brajcamp/camp-registration/internal/handler"    // handlers that implement business logic
	"github.com/brajcamp/camp-registration/internal/middleware" // middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check used by
// load balancers and monitoring systems.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPayment registers the public checkout endpoints.  These are the
// endpoints the registration popup talks to, so they carry the rate-limit
// middleware: order creation performs an outbound gateway call per request.
//
//	POST /api/payment/order  – create a gateway order for a selection
//	POST /api/payment/verify – authenticate a checkout callback signature
//	POST /api/register       – complete a verified registration
func RegisterPayment(e *echo.Echo, p *handler.PaymentHandler, r *handler.RegisterHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/api", limit)
	g.POST("/payment/order", p.CreateOrder)
	g.POST("/payment/verify", p.VerifyPayment)
	g.POST("/register", r.Register)
}

// RegisterAdmin registers the admin login route and the JWT-protected
// read-only views of the registration store.  Login lives under /v1/auth;
// the protected endpoints live under /v1/admin and require the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AuthHandler, adm *handler.AdminHandler, jwtSecret string) {
	e.POST("/v1/auth/login", a.Login)

	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))
	g.GET("/registrations", adm.ListRegistrations)
	g.GET("/registrations/stats", adm.Stats)
}
