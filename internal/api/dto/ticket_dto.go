package dto

import (
	"time"

	"github.com/joshwa2003/hr-helpdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Category    domain.TicketCategory `json:"category"`
	Subcategory string                `json:"subcategory"`
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Tags        []string              `json:"tags"`
	AssignedTo  *string               `json:"assigned_to,omitempty"`
}

// UpdateStatusRequest payload for HR status changes.
type UpdateStatusRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment string              `json:"comment"`
}

// AssignTicketRequest payload for manual assignment.
type AssignTicketRequest struct {
	AgentID string `json:"agent_id"`
}

// ResolveTicketRequest payload.
type ResolveTicketRequest struct {
	Comment string `json:"comment"`
}

// ReopenTicketRequest payload.
type ReopenTicketRequest struct {
	Reason string `json:"reason"`
}

// EscalateTicketRequest payload.
type EscalateTicketRequest struct {
	Reason string `json:"reason"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// UpdateCategoryRequest payload.
type UpdateCategoryRequest struct {
	Category    domain.TicketCategory `json:"category"`
	Subcategory string                `json:"subcategory"`
}

// FeedbackRequest payload for post-resolution ratings.
type FeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// TicketSummary response.
type TicketSummary struct {
	ID              string                `json:"id"`
	TicketNumber    string                `json:"ticket_number"`
	Category        domain.TicketCategory `json:"category"`
	Subcategory     string                `json:"subcategory,omitempty"`
	Subject         string                `json:"subject"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	AssignedTo      *string               `json:"assigned_to"`
	IsConfidential  bool                  `json:"is_confidential"`
	EscalationLevel int                   `json:"escalation_level"`
	Tags            []string              `json:"tags"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// SLAResponse exposes the deadline block.
type SLAResponse struct {
	ResponseHours      int       `json:"response_hours"`
	ResolutionHours    int       `json:"resolution_hours"`
	ResponseDeadline   time.Time `json:"response_deadline"`
	ResolutionDeadline time.Time `json:"resolution_deadline"`
}

// ResolutionResponse exposes the resolve/confirm/reopen negotiation state.
type ResolutionResponse struct {
	ResolvedByHR          bool       `json:"resolved_by_hr"`
	ResolvedAt            *time.Time `json:"resolved_at"`
	ResolvedBy            *string    `json:"resolved_by"`
	ResolutionComment     string     `json:"resolution_comment,omitempty"`
	EmployeeConfirmed     bool       `json:"employee_confirmed"`
	EmployeeConfirmedAt   *time.Time `json:"employee_confirmed_at"`
	ReopenCount           int        `json:"reopen_count"`
	MaxReopenAllowed      int        `json:"max_reopen_allowed"`
	ReopenDeadline        *time.Time `json:"reopen_deadline"`
	PermanentlyClosed     bool       `json:"permanently_closed"`
	PermanentlyClosedAt   *time.Time `json:"permanently_closed_at"`
}

// FeedbackResponse metadata.
type FeedbackResponse struct {
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// EscalationResponse is one hop of the escalation trail.
type EscalationResponse struct {
	ID               string      `json:"id"`
	FromRole         domain.Role `json:"from_role"`
	ToRole           domain.Role `json:"to_role"`
	EscalatedBy      *string     `json:"escalated_by"`
	Reason           string      `json:"reason"`
	IsAutoEscalation bool        `json:"is_auto_escalation"`
	CreatedAt        time.Time   `json:"created_at"`
}

// TicketHistoryResponse is one audit entry.
type TicketHistoryResponse struct {
	ID          string                  `json:"id"`
	ChangeType  domain.TicketChangeType `json:"change_type"`
	ChangedByID *string                 `json:"changed_by_id"`
	OldValue    map[string]any          `json:"old_value,omitempty"`
	NewValue    map[string]any          `json:"new_value,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description     string                  `json:"description"`
	CreatedBy       string                  `json:"created_by"`
	SLA             SLAResponse             `json:"sla"`
	Resolution      ResolutionResponse      `json:"resolution"`
	Feedback        *FeedbackResponse       `json:"feedback,omitempty"`
	FirstResponseAt *time.Time              `json:"first_response_at"`
	ResolvedAt      *time.Time              `json:"resolved_at"`
	ClosedAt        *time.Time              `json:"closed_at"`
	Escalations     []EscalationResponse    `json:"escalations"`
	History         []TicketHistoryResponse `json:"history"`
}
