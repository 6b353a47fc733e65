package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/joshwa2003/hr-helpdesk/internal/api/dto"
	"github.com/joshwa2003/hr-helpdesk/internal/auth"
	"github.com/joshwa2003/hr-helpdesk/internal/domain"
	"github.com/joshwa2003/hr-helpdesk/internal/service"
	apperrors "github.com/joshwa2003/hr-helpdesk/pkg/util"
)

// TicketsHandler manages employee-facing ticket endpoints.
type TicketsHandler struct {
	tickets     *service.TicketService
	escalations *service.EscalationService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, escalations *service.EscalationService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, escalations: escalations}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.TicketCreateInput{
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    req.Priority,
		Tags:        req.Tags,
		AssignedTo:  req.AssignedTo,
	}
	ticket, err := h.tickets.CreateTicket(c.Context(), actor, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	filter := parseTicketQuery(c)
	tickets, err := h.tickets.ListTickets(c.Context(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticket, escalations, history, err := h.tickets.GetTicket(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, escalations, history)})
}

// ConfirmResolution POST /tickets/:id/confirm.
func (h *TicketsHandler) ConfirmResolution(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticket, err := h.tickets.Confirm(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ReopenTicket POST /tickets/:id/reopen.
func (h *TicketsHandler) ReopenTicket(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ReopenTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.Reopen(c.Context(), actor, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// EscalateTicket POST /tickets/:id/escalate.
func (h *TicketsHandler) EscalateTicket(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.EscalateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.escalations.Escalate(c.Context(), actor, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// SubmitFeedback POST /tickets/:id/feedback.
func (h *TicketsHandler) SubmitFeedback(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.SubmitFeedback(c.Context(), actor, c.Params("id"), req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if categoryStr := c.Query("category"); categoryStr != "" {
		for _, part := range strings.Split(categoryStr, ",") {
			filter.Categories = append(filter.Categories, domain.TicketCategory(strings.TrimSpace(part)))
		}
	}
	if unassigned := c.Query("unassigned"); unassigned != "" {
		val := unassigned == "true"
		filter.Unassigned = &val
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:              ticket.ID,
		TicketNumber:    ticket.TicketNumber,
		Category:        ticket.Category,
		Subcategory:     ticket.Subcategory,
		Subject:         ticket.Subject,
		Status:          ticket.Status,
		Priority:        ticket.Priority,
		AssignedTo:      ticket.AssignedTo,
		IsConfidential:  ticket.IsConfidential,
		EscalationLevel: ticket.EscalationLevel,
		Tags:            ticket.Tags,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, escalations []domain.EscalationEntry, history []domain.TicketHistory) dto.TicketDetailResponse {
	detail := dto.TicketDetailResponse{
		TicketSummary: ticketSummary(ticket),
		Description:   ticket.Description,
		CreatedBy:     ticket.CreatedBy,
		SLA: dto.SLAResponse{
			ResponseHours:      ticket.SLA.ResponseHours,
			ResolutionHours:    ticket.SLA.ResolutionHours,
			ResponseDeadline:   ticket.SLA.ResponseDeadline,
			ResolutionDeadline: ticket.SLA.ResolutionDeadline,
		},
		Resolution: dto.ResolutionResponse{
			ResolvedByHR:        ticket.Resolution.ResolvedByHR,
			ResolvedAt:          ticket.Resolution.ResolvedAt,
			ResolvedBy:          ticket.Resolution.ResolvedBy,
			ResolutionComment:   ticket.Resolution.ResolutionComment,
			EmployeeConfirmed:   ticket.Resolution.EmployeeConfirmed,
			EmployeeConfirmedAt: ticket.Resolution.EmployeeConfirmedAt,
			ReopenCount:         ticket.Resolution.ReopenCount,
			MaxReopenAllowed:    ticket.Resolution.MaxReopenAllowed,
			ReopenDeadline:      ticket.Resolution.ReopenDeadline,
			PermanentlyClosed:   ticket.Resolution.PermanentlyClosedByHR,
			PermanentlyClosedAt: ticket.Resolution.PermanentlyClosedAt,
		},
		FirstResponseAt: ticket.FirstResponseAt,
		ResolvedAt:      ticket.ResolvedAt,
		ClosedAt:        ticket.ClosedAt,
		Escalations:     escalationResponses(escalations),
		History:         historyResponses(history),
	}
	if ticket.Feedback != nil {
		detail.Feedback = &dto.FeedbackResponse{
			Rating:      ticket.Feedback.Rating,
			Comment:     ticket.Feedback.Comment,
			SubmittedAt: ticket.Feedback.SubmittedAt,
		}
	}
	return detail
}

func escalationResponses(entries []domain.EscalationEntry) []dto.EscalationResponse {
	resp := make([]dto.EscalationResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.EscalationResponse{
			ID:               entry.ID,
			FromRole:         entry.FromRole,
			ToRole:           entry.ToRole,
			EscalatedBy:      entry.EscalatedBy,
			Reason:           entry.Reason,
			IsAutoEscalation: entry.IsAutoEscalation,
			CreatedAt:        entry.CreatedAt,
		})
	}
	return resp
}

func historyResponses(entries []domain.TicketHistory) []dto.TicketHistoryResponse {
	resp := make([]dto.TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.TicketHistoryResponse{
			ID:          entry.ID,
			ChangeType:  entry.ChangeType,
			ChangedByID: entry.ChangedByID,
			OldValue:    entry.OldValue,
			NewValue:    entry.NewValue,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return resp
}
