package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/joshwa2003/hr-helpdesk/internal/api/dto"
	"github.com/joshwa2003/hr-helpdesk/internal/auth"
	"github.com/joshwa2003/hr-helpdesk/internal/service"
	apperrors "github.com/joshwa2003/hr-helpdesk/pkg/util"
)

// HRTicketsHandler manages the HR-side ticket operations. Routes using it are
// registered behind the RequireHR middleware.
type HRTicketsHandler struct {
	tickets    *service.TicketService
	assignment *service.AssignmentService
}

// NewHRTicketsHandler constructs handler.
func NewHRTicketsHandler(tickets *service.TicketService, assignment *service.AssignmentService) *HRTicketsHandler {
	return &HRTicketsHandler{tickets: tickets, assignment: assignment}
}

// UpdateStatus PATCH /hr/tickets/:id/status.
func (h *HRTicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.UpdateStatus(c.Context(), actor, c.Params("id"), req.Status, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// AssignTicket POST /hr/tickets/:id/assign.
func (h *HRTicketsHandler) AssignTicket(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AgentID == "" {
		return apperrors.NewValidationError("agent_id required", nil)
	}
	ticket, err := h.assignment.Assign(c.Context(), actor, c.Params("id"), req.AgentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ResolveTicket POST /hr/tickets/:id/resolve.
func (h *HRTicketsHandler) ResolveTicket(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ResolveTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.Resolve(c.Context(), actor, c.Params("id"), req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// UpdatePriority PATCH /hr/tickets/:id/priority.
func (h *HRTicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.UpdatePriority(c.Context(), actor, c.Params("id"), req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// UpdateCategory PATCH /hr/tickets/:id/category.
func (h *HRTicketsHandler) UpdateCategory(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.UpdateCategory(c.Context(), actor, c.Params("id"), req.Category, req.Subcategory)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}
