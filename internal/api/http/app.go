package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/smart-faculty/auth-service/internal/config"
)

// NewApp builds the fiber application with global middlewares and routes.
func NewApp(cfg config.Config, logger *zap.Logger, routes RouteConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, routes.Metrics, cfg.CORS, cfg.App.RequestTimeout())
	RegisterRoutes(app, routes)
	return app
}
