package events

import (
	"time"

	"github.com/joshwa2003/hr-helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketEscalated     EventType = "ticket_escalated"
	EventTicketResolved      EventType = "ticket_resolved"
	EventTicketConfirmed     EventType = "ticket_confirmed"
	EventTicketReopened      EventType = "ticket_reopened"
	EventTicketClosed        EventType = "ticket_closed"
)

// Actor identifies who triggered an event; UserID is nil and System true for
// sweep-driven events.
type Actor struct {
	UserID *string     `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
	System bool        `json:"system,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber string                `json:"ticket_number"`
	Category     domain.TicketCategory `json:"category"`
	Priority     domain.TicketPriority `json:"priority"`
	AssignedTo   *string               `json:"assigned_to,omitempty"`
	Subject      string                `json:"subject"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssignedTo *string `json:"assigned_to,omitempty"`
	Manual     bool    `json:"manual"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	FromRole         domain.Role `json:"from_role"`
	ToRole           domain.Role `json:"to_role"`
	EscalationLevel  int         `json:"escalation_level"`
	Reason           string      `json:"reason"`
	IsAutoEscalation bool        `json:"is_auto_escalation"`
	AssignedTo       *string     `json:"assigned_to,omitempty"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	ResolvedBy     string    `json:"resolved_by"`
	Comment        string    `json:"comment,omitempty"`
	ReopenDeadline time.Time `json:"reopen_deadline"`
}

// TicketReopenedPayload payload.
type TicketReopenedPayload struct {
	ReopenCount int    `json:"reopen_count"`
	Reason      string `json:"reason,omitempty"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	Permanent bool `json:"permanent"`
	Confirmed bool `json:"confirmed"`
}
