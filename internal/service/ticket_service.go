package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/joshwa2003/hr-helpdesk/internal/domain"
	"github.com/joshwa2003/hr-helpdesk/internal/events"
	"github.com/joshwa2003/hr-helpdesk/internal/repository"
	apperrors "github.com/joshwa2003/hr-helpdesk/pkg/util"
)

const (
	// reopenWindow is how long after an HR resolution the creator may reopen.
	reopenWindow = 72 * time.Hour
	// defaultMaxReopen floors maxReopenAllowed on every HR resolution. The
	// floor only ratchets up, never down.
	defaultMaxReopen = 3
)

// TicketService coordinates the ticket lifecycle: creation with routing and
// SLA, status changes, and the resolve/confirm/reopen negotiation.
type TicketService struct {
	tickets     repository.TicketRepository
	users       repository.UserRepository
	escalations repository.EscalationRepository
	history     repository.TicketHistoryRepository
	selector    *AssignmentService
	sequencer   *TicketSequencer
	dispatcher  events.Dispatcher
	now         func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	UserRepo       repository.UserRepository
	EscalationRepo repository.EscalationRepository
	HistoryRepo    repository.TicketHistoryRepository
	Selector       *AssignmentService
	Sequencer      *TicketSequencer
	Dispatcher     events.Dispatcher
}

// TicketCreateInput describes ticket creation payload. AssignedTo is the
// optional manual override that suppresses auto-assignment.
type TicketCreateInput struct {
	Category    domain.TicketCategory
	Subcategory string
	Subject     string
	Description string
	Priority    domain.TicketPriority
	Tags        []string
	AssignedTo  *string
}

// TicketListFilter describes listing filters applied before the access check.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	Categories  []domain.TicketCategory
	Unassigned  *bool
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		users:       deps.UserRepo,
		escalations: deps.EscalationRepo,
		history:     deps.HistoryRepo,
		selector:    deps.Selector,
		sequencer:   deps.Sequencer,
		dispatcher:  deps.Dispatcher,
		now:         time.Now,
	}
}

// CreateTicket files a ticket for the creator: routing decides the eligible
// tiers, the selector picks the least-loaded agent unless a manual override
// is supplied, and the SLA calculator stamps the deadlines.
func (s *TicketService) CreateTicket(ctx context.Context, creator *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if creator == nil {
		return nil, apperrors.NewUnauthorized("creator required")
	}
	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	if subject == "" || description == "" {
		return nil, apperrors.NewValidationError("subject and description required", nil)
	}
	if !domain.IsValidCategory(input.Category) {
		return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": input.Category})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.IsValidPriority(priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority})
	}

	now := s.now()
	ticket := &domain.Ticket{
		TicketNumber:   s.sequencer.Next(ctx),
		CreatedBy:      creator.ID,
		Category:       input.Category,
		Subcategory:    strings.TrimSpace(input.Subcategory),
		Subject:        subject,
		Description:    description,
		Status:         domain.TicketStatusOpen,
		Priority:       priority,
		Tags:           input.Tags,
		IsConfidential: domain.IsConfidentialCategory(input.Category),
		SLA:            ComputeSLA(priority, input.Category, input.Subcategory, now),
		Resolution:     domain.ResolutionStatus{MaxReopenAllowed: defaultMaxReopen},
	}

	if input.AssignedTo != nil {
		agent, err := s.users.GetByID(ctx, *input.AssignedTo)
		if err != nil {
			return nil, notFoundOrMap(err, "agent", map[string]any{"agent_id": *input.AssignedTo})
		}
		if !agent.Active || !agent.IsHR() {
			return nil, apperrors.NewValidationError("assignee must be an active HR agent", map[string]any{"agent_id": agent.ID})
		}
		ticket.AssignedTo = &agent.ID
		ticket.IsManuallyAssigned = true
	} else if s.selector != nil {
		agent, err := s.selector.PickLeastLoaded(ctx, ticket.Category)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if agent != nil {
			ticket.AssignedTo = &agent.ID
		}
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, creator, events.EventTicketCreated, ticket.ID, events.TicketCreatedPayload{
		TicketNumber: ticket.TicketNumber,
		Category:     ticket.Category,
		Priority:     ticket.Priority,
		AssignedTo:   ticket.AssignedTo,
		Subject:      ticket.Subject,
	})
	return ticket, nil
}

// ListTickets returns tickets matching the filter that the actor may see.
// Non-HR callers without line reports are scoped to their own tickets at the
// query; everyone else is post-filtered through the access predicate.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("actor required")
	}
	repoFilter := repository.TicketFilter{
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		Categories:  filter.Categories,
		Unassigned:  filter.Unassigned,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	if actor.Role == domain.RoleEmployee {
		repoFilter.CreatedBy = &actor.ID
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	creators := map[string]*domain.User{}
	visible := make([]domain.Ticket, 0, len(tickets))
	for i := range tickets {
		ticket := &tickets[i]
		creator, err := s.creatorFor(ctx, creators, ticket.CreatedBy)
		if err != nil {
			return nil, err
		}
		if CanAccessTicket(actor, ticket, creator) {
			visible = append(visible, *ticket)
		}
	}
	return visible, nil
}

// GetTicket fetches a ticket with its escalation trail and audit history,
// enforcing the access filter.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, []domain.EscalationEntry, []domain.TicketHistory, error) {
	ticket, _, err := s.loadForAccess(ctx, actor, ticketID)
	if err != nil {
		return nil, nil, nil, err
	}
	trail, err := s.escalations.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, nil, apperrors.MapError(err)
	}
	var history []domain.TicketHistory
	if s.history != nil {
		history, err = s.history.ListByTicket(ctx, ticket.ID, 100, 0)
		if err != nil {
			return nil, nil, nil, apperrors.MapError(err)
		}
	}
	return ticket, trail, history, nil
}

// statusTransitions lists the explicit HR status moves. Resolved is reachable
// only through Resolve, Reopened only through Reopen; Closed here is the
// permanent HR close.
var statusTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusPending, domain.TicketStatusClosed},
	domain.TicketStatusInProgress: {domain.TicketStatusPending, domain.TicketStatusClosed},
	domain.TicketStatusPending:    {domain.TicketStatusInProgress, domain.TicketStatusClosed},
	domain.TicketStatusEscalated:  {domain.TicketStatusInProgress, domain.TicketStatusPending, domain.TicketStatusClosed},
	domain.TicketStatusReopened:   {domain.TicketStatusInProgress, domain.TicketStatusPending, domain.TicketStatusClosed},
	domain.TicketStatusResolved:   {domain.TicketStatusClosed},
	domain.TicketStatusClosed:     {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range statusTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// UpdateStatus applies an explicit HR status change. Moving to Closed is the
// permanent closure: it locks the ticket against any future reopen.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.User, ticketID string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	if actor == nil || !actor.IsHR() {
		return nil, apperrors.NewForbidden("hr role required")
	}
	ticket, _, err := s.loadForAccess(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsTerminal() {
		return nil, apperrors.NewStateError(apperrors.CodePermanentlyClosed, "ticket permanently closed", nil)
	}
	if newStatus == domain.TicketStatusResolved || newStatus == domain.TicketStatusReopened {
		return nil, apperrors.NewValidationError("status must be changed through resolve/reopen", map[string]any{"status": newStatus})
	}
	if !isValidTransition(ticket.Status, newStatus) {
		return nil, apperrors.NewStateError(apperrors.CodeInvalidTransition, "invalid status transition",
			map[string]any{"from": ticket.Status, "to": newStatus})
	}

	now := s.now()
	oldStatus := ticket.Status
	s.stampFirstResponse(ticket, now)
	ticket.Status = newStatus
	if newStatus == domain.TicketStatusClosed {
		ticket.ClosedAt = &now
		ticket.Resolution.PermanentlyClosedByHR = true
		ticket.Resolution.PermanentlyClosedAt = &now
		ticket.Resolution.PermanentlyClosedBy = &actor.ID
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordStatusChange(ctx, &actor.ID, ticket.ID, oldStatus, newStatus, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	if newStatus == domain.TicketStatusClosed {
		s.publishEvent(ctx, actor, events.EventTicketClosed, ticket.ID, events.TicketClosedPayload{
			Permanent: true,
			Confirmed: ticket.Resolution.EmployeeConfirmed,
		})
	} else {
		s.publishEvent(ctx, actor, events.EventTicketStatusChanged, ticket.ID, events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		})
	}
	return ticket, nil
}

// Resolve marks the ticket resolved by HR and opens the 72h confirmation
// window for the creator.
func (s *TicketService) Resolve(ctx context.Context, actor *domain.User, ticketID, comment string) (*domain.Ticket, error) {
	if actor == nil || !actor.IsHR() {
		return nil, apperrors.NewForbidden("hr role required")
	}
	ticket, _, err := s.loadForAccess(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsTerminal() {
		return nil, apperrors.NewStateError(apperrors.CodePermanentlyClosed, "ticket permanently closed", nil)
	}
	switch ticket.Status {
	case domain.TicketStatusResolved, domain.TicketStatusClosed:
		return nil, apperrors.NewStateError(apperrors.CodeInvalidTransition, "ticket is not active",
			map[string]any{"status": ticket.Status})
	}

	now := s.now()
	oldStatus := ticket.Status
	s.stampFirstResponse(ticket, now)
	ticket.Status = domain.TicketStatusResolved
	ticket.ResolvedAt = &now
	deadline := now.Add(reopenWindow)
	ticket.Resolution.ResolvedByHR = true
	ticket.Resolution.ResolvedAt = &now
	ticket.Resolution.ResolvedBy = &actor.ID
	ticket.Resolution.ResolutionComment = strings.TrimSpace(comment)
	ticket.Resolution.EmployeeConfirmed = false
	ticket.Resolution.EmployeeConfirmedAt = nil
	ticket.Resolution.ReopenDeadline = &deadline
	if ticket.Resolution.MaxReopenAllowed < defaultMaxReopen {
		ticket.Resolution.MaxReopenAllowed = defaultMaxReopen
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordResolutionChange(ctx, &actor.ID, ticket.ID, oldStatus, "resolved", map[string]any{
		"comment":         ticket.Resolution.ResolutionComment,
		"reopen_deadline": deadline,
	}); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, actor, events.EventTicketResolved, ticket.ID, events.TicketResolvedPayload{
		ResolvedBy:     actor.ID,
		Comment:        ticket.Resolution.ResolutionComment,
		ReopenDeadline: deadline,
	})
	return ticket, nil
}

// Confirm is the creator accepting the HR resolution; it soft-closes the
// ticket. A second confirm fails rather than double-transitioning.
func (s *TicketService) Confirm(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadForCreator(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.Resolution.ResolvedByHR {
		return nil, apperrors.NewStateError(apperrors.CodeResolutionRequired,
			"ticket has not been resolved by HR yet", nil)
	}
	if ticket.Status != domain.TicketStatusResolved {
		return nil, apperrors.NewStateError(apperrors.CodeInvalidTransition, "ticket is not awaiting confirmation",
			map[string]any{"status": ticket.Status})
	}

	now := s.now()
	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusClosed
	ticket.ClosedAt = &now
	ticket.Resolution.EmployeeConfirmed = true
	ticket.Resolution.EmployeeConfirmedAt = &now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordResolutionChange(ctx, &actor.ID, ticket.ID, oldStatus, "confirmed", nil); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, actor, events.EventTicketConfirmed, ticket.ID, events.TicketClosedPayload{
		Permanent: false,
		Confirmed: true,
	})
	return ticket, nil
}

// Reopen lets the creator contest a resolution within the bounded window.
// Guards run in a fixed order so the caller always gets the most specific
// rejection.
func (s *TicketService) Reopen(ctx context.Context, actor *domain.User, ticketID, reason string) (*domain.Ticket, error) {
	ticket, err := s.loadForCreator(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Resolution.PermanentlyClosedByHR {
		return nil, apperrors.NewStateError(apperrors.CodePermanentlyClosed,
			"ticket was permanently closed by HR", nil)
	}
	if !ticket.Resolution.ResolvedByHR {
		return nil, apperrors.NewStateError(apperrors.CodeResolutionRequired,
			"ticket has not been resolved by HR yet", nil)
	}
	if ticket.Resolution.ReopenCount >= ticket.Resolution.MaxReopenAllowed {
		return nil, apperrors.NewStateError(apperrors.CodeReopenLimitExceeded,
			"reopen limit reached", map[string]any{
				"reopen_count": ticket.Resolution.ReopenCount,
				"max_allowed":  ticket.Resolution.MaxReopenAllowed,
			})
	}
	now := s.now()
	if ticket.Resolution.ReopenDeadline != nil && now.After(*ticket.Resolution.ReopenDeadline) {
		return nil, apperrors.NewStateError(apperrors.CodeReopenWindowExpired,
			"reopen window expired", map[string]any{"deadline": *ticket.Resolution.ReopenDeadline})
	}
	if ticket.Status != domain.TicketStatusResolved && ticket.Status != domain.TicketStatusClosed {
		return nil, apperrors.NewStateError(apperrors.CodeInvalidTransition, "ticket is not in a reopenable state",
			map[string]any{"status": ticket.Status})
	}

	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusReopened
	ticket.ClosedAt = nil
	// the ticket is unresolved again; the resolution-SLA breach check re-arms
	ticket.ResolvedAt = nil
	ticket.Resolution.ReopenCount++
	ticket.Resolution.LastReopenedAt = &now
	ticket.Resolution.EmployeeConfirmed = false
	ticket.Resolution.EmployeeConfirmedAt = nil
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordResolutionChange(ctx, &actor.ID, ticket.ID, oldStatus, "reopened", map[string]any{
		"reason":       strings.TrimSpace(reason),
		"reopen_count": ticket.Resolution.ReopenCount,
	}); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, actor, events.EventTicketReopened, ticket.ID, events.TicketReopenedPayload{
		ReopenCount: ticket.Resolution.ReopenCount,
		Reason:      strings.TrimSpace(reason),
	})
	return ticket, nil
}

// UpdatePriority changes ticket priority and recomputes the SLA deadlines
// from the original creation time.
func (s *TicketService) UpdatePriority(ctx context.Context, actor *domain.User, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	if actor == nil || !actor.IsHR() {
		return nil, apperrors.NewForbidden("hr role required")
	}
	if !domain.IsValidPriority(newPriority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": newPriority})
	}
	ticket, _, err := s.loadForAccess(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsTerminal() {
		return nil, apperrors.NewStateError(apperrors.CodePermanentlyClosed, "ticket permanently closed", nil)
	}
	if ticket.Priority == newPriority {
		return ticket, nil
	}
	oldPriority := ticket.Priority
	ticket.Priority = newPriority
	ticket.SLA = ComputeSLA(newPriority, ticket.Category, ticket.Subcategory, ticket.CreatedAt)
	s.stampFirstResponse(ticket, s.now())
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.history != nil {
		if err := s.history.Create(ctx, &domain.TicketHistory{
			TicketID:    ticket.ID,
			ChangedByID: &actor.ID,
			ChangeType:  domain.ChangeTypePriority,
			OldValue:    map[string]any{"priority": oldPriority},
			NewValue:    map[string]any{"priority": newPriority},
		}); err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	return ticket, nil
}

// UpdateCategory re-routes a misfiled ticket: category, confidentiality and
// SLA deadlines are re-derived; assignment is refreshed unless it was manual.
func (s *TicketService) UpdateCategory(ctx context.Context, actor *domain.User, ticketID string, newCategory domain.TicketCategory, subcategory string) (*domain.Ticket, error) {
	if actor == nil || !actor.IsHR() {
		return nil, apperrors.NewForbidden("hr role required")
	}
	if !domain.IsValidCategory(newCategory) {
		return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": newCategory})
	}
	ticket, _, err := s.loadForAccess(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsTerminal() {
		return nil, apperrors.NewStateError(apperrors.CodePermanentlyClosed, "ticket permanently closed", nil)
	}
	if ticket.Category == newCategory && strings.TrimSpace(subcategory) == ticket.Subcategory {
		return ticket, nil
	}
	oldCategory := ticket.Category
	ticket.Category = newCategory
	ticket.Subcategory = strings.TrimSpace(subcategory)
	ticket.IsConfidential = domain.IsConfidentialCategory(newCategory)
	ticket.SLA = ComputeSLA(ticket.Priority, newCategory, ticket.Subcategory, ticket.CreatedAt)
	s.stampFirstResponse(ticket, s.now())
	if !ticket.IsManuallyAssigned && s.selector != nil {
		agent, err := s.selector.PickLeastLoaded(ctx, newCategory)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if agent != nil {
			ticket.AssignedTo = &agent.ID
		} else {
			ticket.AssignedTo = nil
		}
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.history != nil {
		if err := s.history.Create(ctx, &domain.TicketHistory{
			TicketID:    ticket.ID,
			ChangedByID: &actor.ID,
			ChangeType:  domain.ChangeTypeCategory,
			OldValue:    map[string]any{"category": oldCategory},
			NewValue:    map[string]any{"category": newCategory, "subcategory": ticket.Subcategory},
		}); err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	return ticket, nil
}

// SubmitFeedback records the creator's rating once the ticket is resolved or
// closed.
func (s *TicketService) SubmitFeedback(ctx context.Context, actor *domain.User, ticketID string, rating int, comment string) (*domain.Ticket, error) {
	ticket, err := s.loadForCreator(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": rating})
	}
	if ticket.Status != domain.TicketStatusResolved && ticket.Status != domain.TicketStatusClosed {
		return nil, apperrors.NewStateError(apperrors.CodeInvalidTransition, "feedback requires a resolved or closed ticket",
			map[string]any{"status": ticket.Status})
	}
	ticket.Feedback = &domain.TicketFeedback{
		Rating:      rating,
		Comment:     strings.TrimSpace(comment),
		SubmittedAt: s.now(),
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.history != nil {
		if err := s.history.Create(ctx, &domain.TicketHistory{
			TicketID:    ticket.ID,
			ChangedByID: &actor.ID,
			ChangeType:  domain.ChangeTypeFeedback,
			NewValue:    map[string]any{"rating": rating},
		}); err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	return ticket, nil
}

// stampFirstResponse records the first HR touch, which is what the
// response-SLA breach check reads.
func (s *TicketService) stampFirstResponse(ticket *domain.Ticket, now time.Time) {
	if ticket.FirstResponseAt == nil {
		ticket.FirstResponseAt = &now
	}
}

func (s *TicketService) loadForAccess(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, *domain.User, error) {
	if actor == nil {
		return nil, nil, apperrors.NewUnauthorized("actor required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, notFoundOrMap(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	creator, err := s.users.GetByID(ctx, ticket.CreatedBy)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, apperrors.MapError(err)
	}
	if !CanAccessTicket(actor, ticket, creator) {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	return ticket, creator, nil
}

func (s *TicketService) loadForCreator(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("actor required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOrMap(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if ticket.CreatedBy != actor.ID {
		return nil, apperrors.NewForbidden("only the ticket creator may perform this action")
	}
	return ticket, nil
}

func (s *TicketService) creatorFor(ctx context.Context, cache map[string]*domain.User, creatorID string) (*domain.User, error) {
	if creator, ok := cache[creatorID]; ok {
		return creator, nil
	}
	creator, err := s.users.GetByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			cache[creatorID] = nil
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	cache[creatorID] = creator
	return creator, nil
}

func (s *TicketService) recordStatusChange(ctx context.Context, actorID *string, ticketID string, oldStatus, newStatus domain.TicketStatus, comment string) error {
	if s.history == nil {
		return nil
	}
	return s.history.Create(ctx, &domain.TicketHistory{
		TicketID:    ticketID,
		ChangedByID: actorID,
		ChangeType:  domain.ChangeTypeStatus,
		OldValue: map[string]any{
			"status": oldStatus,
		},
		NewValue: map[string]any{
			"status":  newStatus,
			"comment": comment,
		},
	})
}

func (s *TicketService) recordResolutionChange(ctx context.Context, actorID *string, ticketID string, oldStatus domain.TicketStatus, step string, extra map[string]any) error {
	if s.history == nil {
		return nil
	}
	newValue := map[string]any{"step": step}
	for k, v := range extra {
		newValue[k] = v
	}
	return s.history.Create(ctx, &domain.TicketHistory{
		TicketID:    ticketID,
		ChangedByID: actorID,
		ChangeType:  domain.ChangeTypeResolution,
		OldValue:    map[string]any{"status": oldStatus},
		NewValue:    newValue,
	})
}

func (s *TicketService) publishEvent(ctx context.Context, actor *domain.User, eventType events.EventType, ticketID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Actor:     userActor(actor),
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

// userActor builds event actor metadata; nil means the system (sweep) acted.
func userActor(user *domain.User) events.Actor {
	if user == nil {
		return events.Actor{System: true}
	}
	id := user.ID
	return events.Actor{UserID: &id, Role: user.Role}
}

// notFoundOrMap translates pgx.ErrNoRows into a typed not-found error.
func notFoundOrMap(err error, resource string, details map[string]any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.MapError(err)
}
