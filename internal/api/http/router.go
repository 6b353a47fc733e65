package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/joshwa2003/hr-helpdesk/internal/api/http/handlers"
	"github.com/joshwa2003/hr-helpdesk/internal/auth"
	"github.com/joshwa2003/hr-helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	HRTickets      *handlers.HRTicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	authenticated := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authenticated.Post("/change-password", cfg.Users.ChangePassword)
	authenticated.Get("/me", cfg.Users.Me)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Post("/users", cfg.Users.Register)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/confirm", cfg.Tickets.ConfirmResolution)
	tickets.Post("/:id/reopen", cfg.Tickets.ReopenTicket)
	tickets.Post("/:id/escalate", cfg.Tickets.EscalateTicket)
	tickets.Post("/:id/feedback", cfg.Tickets.SubmitFeedback)

	hr := app.Group("/hr/tickets", cfg.AuthMiddleware.Handle, auth.RequireHR())
	hr.Patch("/:id/status", cfg.HRTickets.UpdateStatus)
	hr.Post("/:id/assign", cfg.HRTickets.AssignTicket)
	hr.Post("/:id/resolve", cfg.HRTickets.ResolveTicket)
	hr.Patch("/:id/priority", cfg.HRTickets.UpdatePriority)
	hr.Patch("/:id/category", cfg.HRTickets.UpdateCategory)
}
