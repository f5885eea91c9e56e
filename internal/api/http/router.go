package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smart-faculty/auth-service/internal/api/http/handlers"
	"github.com/smart-faculty/auth-service/internal/auth"
	"github.com/smart-faculty/auth-service/internal/domain"
	"github.com/smart-faculty/auth-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Password       *handlers.PasswordHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health", cfg.Health.Health)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	app.Post("/register", cfg.Auth.Register)
	app.Post("/login", cfg.Auth.Login)
	app.Post("/refresh", cfg.Auth.Refresh)
	app.Post("/logout", cfg.Auth.Logout)

	app.Post("/forgot-password", cfg.Password.Forgot)
	app.Post("/verify-otp", cfg.Password.VerifyOTP)
	app.Post("/reset-password", cfg.Password.Reset)

	app.Get("/me", cfg.AuthMiddleware.Handle, auth.Require(domain.CapabilityReadSelf), cfg.Auth.Me)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/", auth.Require(domain.CapabilityManageUsers), cfg.Users.List)
	users.Get("/:id", auth.Require(domain.CapabilityReadDirectory), cfg.Users.Get)
}
