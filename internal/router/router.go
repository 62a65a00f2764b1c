package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/seguimiento-cmr/seguimiento-api/internal/config"
	"github.com/seguimiento-cmr/seguimiento-api/internal/handler"
	"github.com/seguimiento-cmr/seguimiento-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ComponentHandler *handler.ComponentHandler
	ActivityHandler  *handler.ActivityHandler
	EvidenceHandler  *handler.EvidenceHandler
	UserHandler      *handler.UserHandler
	AuthHandler      *handler.AuthHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	if deps.ComponentHandler != nil {
		deps.ComponentHandler.Register(api.Group("/componentes"))
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api.Group("/actividades"))
	}
	if deps.EvidenceHandler != nil {
		deps.EvidenceHandler.Register(api.Group("/evidencias"))
	}
	if deps.UserHandler != nil {
		deps.UserHandler.Register(api.Group("/users"))
	}
	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"))
	}
}
