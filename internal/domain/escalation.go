package domain

import "time"

// BreachKind identifies which SLA deadline was missed.
type BreachKind string

const (
	BreachResponse   BreachKind = "RESPONSE"
	BreachResolution BreachKind = "RESOLUTION"
)

// EscalationEntry is an append-only record of one escalation step.
// EscalatedBy is nil when the sweep triggered the step.
type EscalationEntry struct {
	ID               string
	TicketID         string
	FromRole         Role
	ToRole           Role
	EscalatedBy      *string
	Reason           string
	IsAutoEscalation bool
	CreatedAt        time.Time
}
