package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joshwa2003/hr-helpdesk/internal/domain"
	"github.com/joshwa2003/hr-helpdesk/internal/events"
	"github.com/joshwa2003/hr-helpdesk/internal/repository"
	apperrors "github.com/joshwa2003/hr-helpdesk/pkg/util"
)

// EscalationService detects SLA breaches and advances tickets up the fixed
// role chain.
type EscalationService struct {
	tickets     repository.TicketRepository
	users       repository.UserRepository
	escalations repository.EscalationRepository
	history     repository.TicketHistoryRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	sweepLimit  int
	now         func() time.Time
}

// EscalationDependencies bundles repositories.
type EscalationDependencies struct {
	TicketRepo     repository.TicketRepository
	UserRepo       repository.UserRepository
	EscalationRepo repository.EscalationRepository
	HistoryRepo    repository.TicketHistoryRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	SweepBatchSize int
}

// NewEscalationService creates the service.
func NewEscalationService(deps EscalationDependencies) *EscalationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EscalationService{
		tickets:     deps.TicketRepo,
		users:       deps.UserRepo,
		escalations: deps.EscalationRepo,
		history:     deps.HistoryRepo,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		sweepLimit:  deps.SweepBatchSize,
		now:         time.Now,
	}
}

// NeedsEscalation reports whether either SLA deadline is breached at the
// given instant, and which one. Response breaches take precedence when both
// deadlines passed.
func NeedsEscalation(ticket *domain.Ticket, now time.Time) (domain.BreachKind, time.Time, bool) {
	if ticket.FirstResponseAt == nil && now.After(ticket.SLA.ResponseDeadline) {
		return domain.BreachResponse, ticket.SLA.ResponseDeadline, true
	}
	if ticket.ResolvedAt == nil && now.After(ticket.SLA.ResolutionDeadline) {
		return domain.BreachResolution, ticket.SLA.ResolutionDeadline, true
	}
	return "", time.Time{}, false
}

// Escalate advances the ticket one tier up the chain on behalf of actor. The
// actor must be the ticket creator or hold an HR role; pass a nil actor only
// from the sweep.
func (s *EscalationService) Escalate(ctx context.Context, actor *domain.User, ticketID, reason string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOrMap(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if actor != nil && ticket.CreatedBy != actor.ID && !actor.IsHR() {
		return nil, apperrors.NewForbidden("only the ticket creator or HR may escalate")
	}
	if reason == "" {
		reason = "manual escalation"
	}
	return s.escalate(ctx, ticket, actor, reason, false)
}

// escalate performs one escalation step: FIFO agent pick at the next tier,
// reassignment, level bump and audit trail. SLA deadlines are never
// re-derived here; repeat breaches accumulate on the same ticket.
func (s *EscalationService) escalate(ctx context.Context, ticket *domain.Ticket, actor *domain.User, reason string, auto bool) (*domain.Ticket, error) {
	if ticket.IsTerminal() {
		return nil, apperrors.NewStateError(apperrors.CodePermanentlyClosed, "ticket permanently closed", nil)
	}
	if ticket.Status == domain.TicketStatusClosed || ticket.Status == domain.TicketStatusResolved {
		return nil, apperrors.NewStateError(apperrors.CodeInvalidTransition, "ticket is not active", map[string]any{"status": ticket.Status})
	}

	currentRole, err := s.currentTierRole(ctx, ticket)
	if err != nil {
		return nil, err
	}
	nextRole, ok := domain.NextRole(currentRole)
	if !ok {
		return nil, apperrors.NewStateError(apperrors.CodeNoEscalationTarget,
			"cannot escalate further", map[string]any{"current_role": currentRole})
	}

	// escalation favors tenure over balance: pure FIFO by account creation
	holders, err := s.users.ListByRoles(ctx, []domain.Role{nextRole})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(holders) == 0 {
		return nil, apperrors.NewStateError(apperrors.CodeNoEscalationTarget,
			"no active agent at next tier", map[string]any{"next_role": nextRole})
	}
	target := holders[0]

	oldAssignee := ticket.AssignedTo
	oldStatus := ticket.Status
	ticket.AssignedTo = &target.ID
	ticket.Status = domain.TicketStatusEscalated
	ticket.EscalationLevel++
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	entry := &domain.EscalationEntry{
		TicketID:         ticket.ID,
		FromRole:         currentRole,
		ToRole:           nextRole,
		Reason:           reason,
		IsAutoEscalation: auto,
	}
	if actor != nil {
		entry.EscalatedBy = &actor.ID
	}
	if err := s.escalations.Create(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.history != nil {
		historyEntry := &domain.TicketHistory{
			TicketID:   ticket.ID,
			ChangeType: domain.ChangeTypeEscalation,
			OldValue: map[string]any{
				"status":      oldStatus,
				"assigned_to": oldAssignee,
				"level":       ticket.EscalationLevel - 1,
			},
			NewValue: map[string]any{
				"status":      ticket.Status,
				"assigned_to": ticket.AssignedTo,
				"level":       ticket.EscalationLevel,
				"reason":      reason,
			},
		}
		if actor != nil {
			historyEntry.ChangedByID = &actor.ID
		}
		if err := s.history.Create(ctx, historyEntry); err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	s.publishEscalated(ctx, actor, ticket, currentRole, nextRole, reason, auto)
	return ticket, nil
}

// currentTierRole resolves which tier the ticket currently sits on: the
// assignee's role when assigned, otherwise the first eligible tier for the
// category (an unassigned breach escalates past the tier nobody picked it
// up from).
func (s *EscalationService) currentTierRole(ctx context.Context, ticket *domain.Ticket) (domain.Role, error) {
	if ticket.AssignedTo == nil {
		return EligibleRoles(ticket.Category)[0], nil
	}
	assignee, err := s.users.GetByID(ctx, *ticket.AssignedTo)
	if err != nil {
		return "", notFoundOrMap(err, "assignee", map[string]any{"user_id": *ticket.AssignedTo})
	}
	return assignee.Role, nil
}

// SweepResult summarizes one sweep run.
type SweepResult struct {
	Checked   int
	Escalated int
	Failed    int
}

// SweepEscalations scans all non-terminal tickets and auto-escalates those
// past a deadline. Each ticket is independent: a failure is logged and the
// sweep continues, so an interrupted run can safely be repeated.
func (s *EscalationService) SweepEscalations(ctx context.Context) (SweepResult, error) {
	tickets, err := s.tickets.ListForSweep(ctx, s.sweepLimit)
	if err != nil {
		return SweepResult{}, apperrors.MapError(err)
	}

	result := SweepResult{Checked: len(tickets)}
	now := s.now()
	for i := range tickets {
		ticket := &tickets[i]
		kind, deadline, breached := NeedsEscalation(ticket, now)
		if !breached {
			continue
		}
		reason := breachReason(kind, deadline)
		if _, err := s.escalate(ctx, ticket, nil, reason, true); err != nil {
			result.Failed++
			if apperrors.IsCode(err, apperrors.CodeNoEscalationTarget) {
				s.logger.Warn("sweep cannot escalate ticket further",
					zap.String("ticket_id", ticket.ID),
					zap.String("ticket_number", ticket.TicketNumber))
			} else {
				s.logger.Error("sweep escalation failed",
					zap.String("ticket_id", ticket.ID),
					zap.Error(err))
			}
			continue
		}
		result.Escalated++
	}
	return result, nil
}

func breachReason(kind domain.BreachKind, deadline time.Time) string {
	switch kind {
	case domain.BreachResponse:
		return fmt.Sprintf("response SLA breached (deadline %s)", deadline.Format(time.RFC3339))
	case domain.BreachResolution:
		return fmt.Sprintf("resolution SLA breached (deadline %s)", deadline.Format(time.RFC3339))
	default:
		return "sla breached"
	}
}

func (s *EscalationService) publishEscalated(ctx context.Context, actor *domain.User, ticket *domain.Ticket, from, to domain.Role, reason string, auto bool) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketEscalated,
		TicketID:  ticket.ID,
		Actor:     userActor(actor),
		Timestamp: time.Now(),
		Payload: events.TicketEscalatedPayload{
			FromRole:         from,
			ToRole:           to,
			EscalationLevel:  ticket.EscalationLevel,
			Reason:           reason,
			IsAutoEscalation: auto,
			AssignedTo:       ticket.AssignedTo,
		},
	}
	_ = s.dispatcher.Publish(ctx, event)
}
