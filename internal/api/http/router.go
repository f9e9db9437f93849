package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/equipment-ticketing/internal/api/http/handlers"
	"github.com/spec-kit/equipment-ticketing/internal/auth"
	"github.com/spec-kit/equipment-ticketing/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Units          *handlers.UnitsHandler
	Tickets        *handlers.TicketsHandler
	Assignments    *handlers.AssignmentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. The role guards here mirror the service
// checks; services stay authoritative so a missing guard cannot widen access.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	api := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())

	api.Get("/users/assignable", cfg.Users.ListAssignable)

	units := api.Group("/units")
	units.Get("", cfg.Units.List)
	units.Post("", auth.RequireAdmin(), cfg.Units.Create)
	units.Get("/:unitId/tickets", cfg.Tickets.ListByUnit)

	tickets := api.Group("/tickets")
	tickets.Get("", auth.RequireAdmin(), cfg.Tickets.ListAll)
	tickets.Post("", auth.RequireRole(domain.RoleEmployee, domain.RoleAdmin), cfg.Tickets.Create)
	tickets.Get("/queue", cfg.Tickets.ListQueue)
	tickets.Get("/pending", auth.RequireAdmin(), cfg.Tickets.ListPending)

	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id", cfg.Tickets.Update)
	tickets.Put("/:id/status", auth.RequireAdmin(), cfg.Tickets.OverrideStatus)

	tickets.Post("/:id/start", auth.RequireRole(domain.RoleEmployee), cfg.Tickets.Start)
	tickets.Post("/:id/work-update", auth.RequireRole(domain.RoleEmployee), cfg.Tickets.WorkUpdate)
	tickets.Post("/:id/resolve", auth.RequireRole(domain.RoleEmployee), cfg.Tickets.Resolve)
	tickets.Post("/:id/verify", auth.RequireRole(domain.RoleManager), cfg.Tickets.Verify)
	tickets.Post("/:id/close", auth.RequireAdmin(), cfg.Tickets.Close)

	tickets.Post("/:id/assign", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Assignments.Assign)
	tickets.Post("/:id/assign-manager", auth.RequireAdmin(), cfg.Assignments.AssignManager)
	tickets.Post("/:id/assign-employee", auth.RequireRole(domain.RoleManager), cfg.Assignments.AssignEmployee)
	tickets.Get("/:id/assignments", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Assignments.ListLog)
}
