package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/field-report-service/internal/api/http/handlers"
	"github.com/fieldops/field-report-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Submissions    *handlers.SubmissionsHandler
	Feed           *handlers.FeedHandler
	Uploads        *handlers.UploadsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. The feed and badge stay open to anonymous
// callers; the services decide what they see.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)
	api.Post("/feedback", cfg.Submissions.CreateFeedback)
	api.Get("/feed", cfg.Feed.GetFeed)
	api.Get("/feed/badge", cfg.Feed.Badge)

	member := auth.RequireActor()
	api.Post("/complaints", member, cfg.Submissions.CreateComplaint)
	api.Post("/service-reports", member, cfg.Submissions.CreateServiceReport)
	api.Post("/submissions/:kind/:id/viewed", member, cfg.Submissions.MarkViewed)
	api.Get("/users/search", member, cfg.Feed.SearchUsers)
	api.Post("/uploads", member, cfg.Uploads.IssueUpload)

	// Per-route guards: a guarded Group("") would mount on every /api route.
	admin := auth.RequireAdmin()
	api.Post("/submissions/:kind/:id/review", admin, cfg.Submissions.Review)
	api.Put("/submissions/:kind/:id/solution", admin, cfg.Submissions.EditSolution)
	api.Patch("/admin/users/:id", admin, cfg.Users.UpdateUser)
	api.Post("/admin/users/:id/deactivate", admin, cfg.Users.Deactivate)
}
