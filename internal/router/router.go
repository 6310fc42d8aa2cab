package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deadline-mate/api/internal/config"
	"github.com/deadline-mate/api/internal/handler"
	"github.com/deadline-mate/api/internal/middleware"
	"github.com/deadline-mate/api/internal/models"
	"github.com/deadline-mate/api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	GroupHandler      *handler.GroupHandler
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	DashboardHandler  *handler.DashboardHandler
	ActivityHandler   *handler.ActivityHandler
	JWTMiddleware     fiber.Handler
	RateLimiter       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		if deps.RateLimiter != nil {
			auth.Use(deps.RateLimiter)
		}
		deps.AuthHandler.Register(auth)
		deps.AuthHandler.RegisterProtected(auth.Group("", jwtMiddleware))
	}

	if deps.GroupHandler != nil {
		groups := api.Group("/groups", jwtMiddleware)
		deps.GroupHandler.Register(groups)

		students := api.Group("/students", jwtMiddleware, middleware.RequireRole(models.RoleTeacher))
		deps.GroupHandler.RegisterRoster(students)
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.DashboardHandler != nil {
		dashboard := api.Group("/dashboard", jwtMiddleware, middleware.RequireRole(models.RoleStudent))
		deps.DashboardHandler.Register(dashboard)
	}

	if deps.ActivityHandler != nil {
		activity := api.Group("/activity", jwtMiddleware, middleware.RequireRole(models.RoleTeacher))
		deps.ActivityHandler.Register(activity)
	}
}
