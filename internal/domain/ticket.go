package domain

import "time"

// TicketStatus enumerates lifecycle states for help desk tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusPending    TicketStatus = "PENDING"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
	TicketStatusEscalated  TicketStatus = "ESCALATED"
	TicketStatusReopened   TicketStatus = "REOPENED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

var validPriorities = map[TicketPriority]struct{}{
	TicketPriorityLow:      {},
	TicketPriorityMedium:   {},
	TicketPriorityHigh:     {},
	TicketPriorityCritical: {},
}

// IsValidPriority reports whether the priority is one of the known levels.
func IsValidPriority(priority TicketPriority) bool {
	_, ok := validPriorities[priority]
	return ok
}

// SLAInfo carries the deadlines derived from priority and category at
// creation time. Deadlines are only recomputed when priority or category
// changes, never on escalation.
type SLAInfo struct {
	ResponseHours      int
	ResolutionHours    int
	ResponseDeadline   time.Time
	ResolutionDeadline time.Time
}

// ResolutionStatus is the embedded resolve/confirm/reopen negotiation state.
// It is owned by the Ticket and mutated only through the ticket service
// transitions so its invariants hold.
type ResolutionStatus struct {
	ResolvedByHR          bool
	ResolvedAt            *time.Time
	ResolvedBy            *string
	ResolutionComment     string
	EmployeeConfirmed     bool
	EmployeeConfirmedAt   *time.Time
	ReopenCount           int
	MaxReopenAllowed      int
	ReopenDeadline        *time.Time
	LastReopenedAt        *time.Time
	PermanentlyClosedByHR bool
	PermanentlyClosedAt   *time.Time
	PermanentlyClosedBy   *string
}

// TicketFeedback stores the creator's post-resolution rating.
type TicketFeedback struct {
	Rating      int
	Comment     string
	SubmittedAt time.Time
}

// Ticket is the aggregate for HR support requests.
type Ticket struct {
	ID                 string
	TicketNumber       string
	CreatedBy          string
	AssignedTo         *string
	IsManuallyAssigned bool
	Category           TicketCategory
	Subcategory        string
	Subject            string
	Description        string
	Status             TicketStatus
	Priority           TicketPriority
	Tags               []string
	IsConfidential     bool
	EscalationLevel    int
	SLA                SLAInfo
	Resolution         ResolutionStatus
	Feedback           *TicketFeedback
	FirstResponseAt    *time.Time
	ResolvedAt         *time.Time
	ClosedAt           *time.Time
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsTerminal reports whether the ticket reached the hard-closed state that no
// transition may leave.
func (t *Ticket) IsTerminal() bool {
	return t.Status == TicketStatusClosed && t.Resolution.PermanentlyClosedByHR
}
