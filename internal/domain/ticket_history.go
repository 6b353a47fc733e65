package domain

import "time"

// TicketChangeType captures what changed in a history entry.
type TicketChangeType string

const (
	ChangeTypeStatus     TicketChangeType = "STATUS_CHANGE"
	ChangeTypeAssignee   TicketChangeType = "ASSIGNEE_CHANGE"
	ChangeTypePriority   TicketChangeType = "PRIORITY_CHANGE"
	ChangeTypeCategory   TicketChangeType = "CATEGORY_CHANGE"
	ChangeTypeEscalation TicketChangeType = "ESCALATION"
	ChangeTypeResolution TicketChangeType = "RESOLUTION"
	ChangeTypeFeedback   TicketChangeType = "FEEDBACK"
)

// TicketHistory is an immutable audit trail entry. ChangedByID is nil for
// system-triggered changes such as the escalation sweep.
type TicketHistory struct {
	ID          string
	TicketID    string
	ChangedByID *string
	ChangeType  TicketChangeType
	OldValue    map[string]any
	NewValue    map[string]any
	CreatedAt   time.Time
}
