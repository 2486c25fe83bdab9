package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civigo/citizen-portal/internal/api/http/handlers"
	"github.com/civigo/citizen-portal/internal/auth"
	"github.com/civigo/citizen-portal/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Queue          *handlers.QueueHandler
	Catalog        *handlers.CatalogHandler
	Notifications  *handlers.NotificationsHandler
	Analytics      *handlers.AnalyticsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Each protected route names its role set
// explicitly; there is no implicit role hierarchy.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	authed := cfg.AuthMiddleware.Handle

	notifications := app.Group("/notifications", authed)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Patch("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Patch("/:id/read", cfg.Notifications.MarkRead)
	notifications.Delete("/:id", cfg.Notifications.Delete)

	services := app.Group("/services")
	services.Get("/sectors", cfg.Catalog.ListSectors)
	services.Post("/sectors", authed, auth.RequireRoles(domain.RoleAdmin), cfg.Catalog.CreateSector)
	services.Patch("/sectors/:id", authed, auth.RequireRoles(domain.RoleAdmin), cfg.Catalog.UpdateSector)
	services.Delete("/sectors/:id", authed, auth.RequireRoles(domain.RoleAdmin), cfg.Catalog.DeleteSector)
	services.Post("/services", authed, auth.RequireRoles(domain.RoleAdmin), cfg.Catalog.CreateService)
	services.Patch("/services/:id", authed, auth.RequireRoles(domain.RoleAdmin), cfg.Catalog.UpdateService)
	services.Delete("/services/:id", authed, auth.RequireRoles(domain.RoleAdmin), cfg.Catalog.DeleteService)
	services.Get("/:serviceId", authed, cfg.Catalog.GetService)

	queue := app.Group("/queue", authed)
	queue.Post("/take", cfg.Queue.Take)
	queue.Get("/my-status", cfg.Queue.MyStatus)
	queue.Get("/my-history", cfg.Queue.MyHistory)
	queue.Get("/history/:sectorId", auth.RequireStaff(), cfg.Queue.SectorHistory)
	queue.Get("/list/:sectorId", auth.RequireStaff(), cfg.Queue.List)
	queue.Patch("/status/:queueId", auth.RequireRoles(domain.RoleOfficer, domain.RoleHelpdesk), cfg.Queue.UpdateStatus)
	queue.Post("/forward/:queueId", auth.RequireRoles(domain.RoleOfficer), cfg.Queue.Forward)
	queue.Post("/register-walkin", auth.RequireRoles(domain.RoleHelpdesk, domain.RoleAdmin), cfg.Queue.RegisterWalkIn)

	// Backward-compatible aliases kept for older portal clients.
	queue.Post("/", cfg.Queue.Take)
	queue.Get("/active", cfg.Queue.MyStatus)
	queue.Get("/:queueId", cfg.Queue.GetByID)
	queue.Delete("/:queueId", cfg.Queue.Cancel)

	analytics := app.Group("/analytics", authed, auth.RequireRoles(domain.RoleAdmin))
	analytics.Get("/summary", cfg.Analytics.Summary)
}
