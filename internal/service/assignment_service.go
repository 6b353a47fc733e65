package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joshwa2003/hr-helpdesk/internal/domain"
	"github.com/joshwa2003/hr-helpdesk/internal/events"
	"github.com/joshwa2003/hr-helpdesk/internal/repository"
	apperrors "github.com/joshwa2003/hr-helpdesk/pkg/util"
)

// AssignmentService picks assignees for new tickets and handles manual
// assignment by HR.
type AssignmentService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// PickLeastLoaded selects the eligible HR agent with the fewest open tickets
// for the category; ties go to the oldest account. Returns nil when no active
// agent holds an eligible role, which is a valid outcome (the ticket stays
// unassigned), not an error.
//
// Workload counts are read without any cross-ticket lock, so two concurrent
// creations can land on the same agent. That approximate fairness is accepted.
func (s *AssignmentService) PickLeastLoaded(ctx context.Context, category domain.TicketCategory) (*domain.User, error) {
	candidates, err := s.users.ListByRoles(ctx, EligibleRoles(category))
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		s.logger.Info("no eligible agent for category; ticket will stay unassigned",
			zap.String("category", string(category)))
		return nil, nil
	}

	var best *domain.User
	bestCount := 0
	for i := range candidates {
		count, err := s.tickets.CountOpenByAssignee(ctx, candidates[i].ID)
		if err != nil {
			return nil, err
		}
		// candidates arrive ordered by account creation ascending, so a
		// strict < keeps the oldest account on ties
		if best == nil || count < bestCount {
			best = &candidates[i]
			bestCount = count
		}
	}
	return best, nil
}

// Assign sets the assignee by explicit HR choice and flags the ticket as
// manually assigned, which suppresses any later auto-reassignment and
// restricts same-tier visibility.
func (s *AssignmentService) Assign(ctx context.Context, actor *domain.User, ticketID, agentID string) (*domain.Ticket, error) {
	if actor == nil || !actor.IsHR() {
		return nil, apperrors.NewForbidden("hr role required for assignment")
	}
	agent, err := s.users.GetByID(ctx, agentID)
	if err != nil {
		return nil, notFoundOrMap(err, "agent", map[string]any{"agent_id": agentID})
	}
	if !agent.Active {
		return nil, apperrors.NewConflict("agent inactive", map[string]any{"agent_id": agentID})
	}
	if !agent.IsHR() {
		return nil, apperrors.NewValidationError("assignee must hold an HR role", map[string]any{"agent_id": agentID})
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOrMap(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if ticket.IsTerminal() {
		return nil, apperrors.NewStateError(apperrors.CodePermanentlyClosed, "ticket permanently closed", nil)
	}

	oldAssignee := ticket.AssignedTo
	ticket.AssignedTo = &agent.ID
	ticket.IsManuallyAssigned = true
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordAssigneeChange(ctx, actor.ID, ticket.ID, oldAssignee, ticket.AssignedTo); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishAssigned(ctx, actor, ticket, true)
	return ticket, nil
}

func (s *AssignmentService) recordAssigneeChange(ctx context.Context, actorID, ticketID string, oldAssignee, newAssignee *string) error {
	if s.history == nil {
		return nil
	}
	return s.history.Create(ctx, &domain.TicketHistory{
		TicketID:    ticketID,
		ChangedByID: &actorID,
		ChangeType:  domain.ChangeTypeAssignee,
		OldValue: map[string]any{
			"assigned_to": oldAssignee,
		},
		NewValue: map[string]any{
			"assigned_to": newAssignee,
			"manual":      true,
		},
	})
}

func (s *AssignmentService) publishAssigned(ctx context.Context, actor *domain.User, ticket *domain.Ticket, manual bool) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketAssigned,
		TicketID:  ticket.ID,
		Actor:     userActor(actor),
		Timestamp: time.Now(),
		Payload: events.TicketAssignedPayload{
			AssignedTo: ticket.AssignedTo,
			Manual:     manual,
		},
	}
	_ = s.dispatcher.Publish(ctx, event)
}
