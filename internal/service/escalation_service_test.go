package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshwa2003/hr-helpdesk/internal/domain"
	"github.com/joshwa2003/hr-helpdesk/internal/events"
	apperrors "github.com/joshwa2003/hr-helpdesk/pkg/util"
)

func TestNeedsEscalation(t *testing.T) {
	now := testStart.Add(10 * time.Hour)
	base := domain.Ticket{
		SLA: domain.SLAInfo{
			ResponseDeadline:   testStart.Add(8 * time.Hour),
			ResolutionDeadline: testStart.Add(9 * time.Hour),
		},
	}

	t.Run("response breach when no first touch", func(t *testing.T) {
		ticket := base
		kind, deadline, breached := NeedsEscalation(&ticket, now)
		require.True(t, breached)
		assert.Equal(t, domain.BreachResponse, kind)
		assert.Equal(t, ticket.SLA.ResponseDeadline, deadline)
	})

	t.Run("resolution breach after first touch", func(t *testing.T) {
		ticket := base
		touched := testStart.Add(time.Hour)
		ticket.FirstResponseAt = &touched
		kind, _, breached := NeedsEscalation(&ticket, now)
		require.True(t, breached)
		assert.Equal(t, domain.BreachResolution, kind)
	})

	t.Run("no breach when resolved in time", func(t *testing.T) {
		ticket := base
		touched := testStart.Add(time.Hour)
		resolved := testStart.Add(2 * time.Hour)
		ticket.FirstResponseAt = &touched
		ticket.ResolvedAt = &resolved
		_, _, breached := NeedsEscalation(&ticket, now)
		assert.False(t, breached)
	})

	t.Run("no breach before deadlines", func(t *testing.T) {
		ticket := base
		_, _, breached := NeedsEscalation(&ticket, testStart.Add(time.Hour))
		assert.False(t, breached)
	})
}

func TestEscalateWalksRoleChain(t *testing.T) {
	env := newTestEnv(testStart)
	creator := env.addUser("emp-1", domain.RoleEmployee)
	env.addUser("exec-1", domain.RoleHRExecutive)
	env.addUser("mgr-1", domain.RoleHRManager)
	env.addUser("bp-1", domain.RoleHRBP)
	env.addUser("vp-1", domain.RoleVicePresident)
	ticket := createLeaveTicket(t, env, creator)

	expected := []struct {
		assignee string
		toRole   domain.Role
	}{
		{"mgr-1", domain.RoleHRManager},
		{"bp-1", domain.RoleHRBP},
		{"vp-1", domain.RoleVicePresident},
	}
	for i, step := range expected {
		escalated, err := env.escalateSvc.Escalate(context.Background(), creator, ticket.ID, "no progress")
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusEscalated, escalated.Status)
		assert.Equal(t, i+1, escalated.EscalationLevel)
		require.NotNil(t, escalated.AssignedTo)
		assert.Equal(t, step.assignee, *escalated.AssignedTo)
	}

	// the vice president has no successor
	_, err := env.escalateSvc.Escalate(context.Background(), creator, ticket.ID, "keep going")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNoEscalationTarget))

	trail, err := env.escalations.ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, trail, 3)
	for i, step := range expected {
		assert.Equal(t, step.toRole, trail[i].ToRole)
		assert.False(t, trail[i].IsAutoEscalation)
	}
}

func TestEscalateUnassignedUsesCategoryBaseTier(t *testing.T) {
	env := newTestEnv(testStart)
	creator := env.addUser("emp-1", domain.RoleEmployee)
	// no executive exists, so the ticket starts unassigned
	mgr := env.addUser("mgr-1", domain.RoleHRManager)
	ticket := createLeaveTicket(t, env, creator)
	require.Nil(t, ticket.AssignedTo)

	escalated, err := env.escalateSvc.Escalate(context.Background(), creator, ticket.ID, "nobody picked this up")
	require.NoError(t, err)
	require.NotNil(t, escalated.AssignedTo)
	assert.Equal(t, mgr.ID, *escalated.AssignedTo)

	trail, _ := env.escalations.ListByTicket(context.Background(), ticket.ID)
	require.Len(t, trail, 1)
	assert.Equal(t, domain.RoleHRExecutive, trail[0].FromRole)
}

func TestEscalatePermissions(t *testing.T) {
	env := newTestEnv(testStart)
	creator := env.addUser("emp-1", domain.RoleEmployee)
	stranger := env.addUser("emp-2", domain.RoleEmployee)
	env.addUser("exec-1", domain.RoleHRExecutive)
	env.addUser("mgr-1", domain.RoleHRManager)
	ticket := createLeaveTicket(t, env, creator)

	_, err := env.escalateSvc.Escalate(context.Background(), stranger, ticket.ID, "hurry up")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestEscalateFIFOPickAtNextTier(t *testing.T) {
	env := newTestEnv(testStart)
	creator := env.addUser("emp-1", domain.RoleEmployee)
	env.addUser("exec-1", domain.RoleHRExecutive)
	oldest := env.addUser("mgr-old", domain.RoleHRManager)
	env.addUser("mgr-new", domain.RoleHRManager)
	ticket := createLeaveTicket(t, env, creator)

	escalated, err := env.escalateSvc.Escalate(context.Background(), creator, ticket.ID, "")
	require.NoError(t, err)
	require.NotNil(t, escalated.AssignedTo)
	assert.Equal(t, oldest.ID, *escalated.AssignedTo)
}

func TestEscalateRejectsInactiveTickets(t *testing.T) {
	env := newTestEnv(testStart)
	creator := env.addUser("emp-1", domain.RoleEmployee)
	exec := env.addUser("exec-1", domain.RoleHRExecutive)
	env.addUser("mgr-1", domain.RoleHRManager)
	ticket := createLeaveTicket(t, env, creator)

	_, err := env.ticketSvc.Resolve(context.Background(), exec, ticket.ID, "done")
	require.NoError(t, err)

	_, err = env.escalateSvc.Escalate(context.Background(), creator, ticket.ID, "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))
}

func TestSweepEscalatesBreachedTickets(t *testing.T) {
	env := newTestEnv(testStart)
	creator := env.addUser("emp-1", domain.RoleEmployee)
	env.addUser("exec-1", domain.RoleHRExecutive)
	env.addUser("mgr-1", domain.RoleHRManager)

	breached := createLeaveTicket(t, env, creator) // medium leave: response SLA 8h
	fresh := createLeaveTicket(t, env, creator)
	touched := testStart.Add(time.Minute)
	stored, err := env.tickets.GetByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	stored.FirstResponseAt = &touched
	require.NoError(t, env.tickets.Update(context.Background(), stored))

	env.clock.Advance(9 * time.Hour)
	result, err := env.escalateSvc.SweepEscalations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, 1, result.Escalated)
	assert.Equal(t, 0, result.Failed)

	after, err := env.tickets.GetByID(context.Background(), breached.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusEscalated, after.Status)
	assert.Equal(t, 1, after.EscalationLevel)

	trail, _ := env.escalations.ListByTicket(context.Background(), breached.ID)
	require.Len(t, trail, 1)
	assert.True(t, trail[0].IsAutoEscalation)
	assert.Nil(t, trail[0].EscalatedBy)
	assert.Contains(t, trail[0].Reason, "response SLA breached")

	// sweep events report a system actor
	for _, event := range env.dispatcher.events {
		if event.Type == events.EventTicketEscalated && event.TicketID == breached.ID {
			assert.True(t, event.Actor.System)
		}
	}
}

func TestSweepContinuesPastDeadEnds(t *testing.T) {
	env := newTestEnv(testStart)
	creator := env.addUser("emp-1", domain.RoleEmployee)
	vp := env.addUser("vp-1", domain.RoleVicePresident)
	env.addUser("exec-1", domain.RoleHRExecutive)
	env.addUser("mgr-1", domain.RoleHRManager)

	// a ticket already stuck at the top of the chain
	stuck := createLeaveTicket(t, env, creator)
	topped, err := env.tickets.GetByID(context.Background(), stuck.ID)
	require.NoError(t, err)
	topped.AssignedTo = &vp.ID
	require.NoError(t, env.tickets.Update(context.Background(), topped))

	escalatable := createLeaveTicket(t, env, creator)

	env.clock.Advance(9 * time.Hour)
	result, err := env.escalateSvc.SweepEscalations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, 1, result.Escalated)
	assert.Equal(t, 1, result.Failed)

	after, err := env.tickets.GetByID(context.Background(), escalatable.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusEscalated, after.Status)
}

func TestSweepIsRepeatSafe(t *testing.T) {
	env := newTestEnv(testStart)
	creator := env.addUser("emp-1", domain.RoleEmployee)
	env.addUser("exec-1", domain.RoleHRExecutive)
	env.addUser("mgr-1", domain.RoleHRManager)
	env.addUser("bp-1", domain.RoleHRBP)

	ticket := createLeaveTicket(t, env, creator)
	env.clock.Advance(9 * time.Hour)

	first, err := env.escalateSvc.SweepEscalations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Escalated)

	// escalation did not reset deadlines, so the still-breached ticket
	// climbs one more tier on the next run
	second, err := env.escalateSvc.SweepEscalations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, second.Escalated)

	after, err := env.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.EscalationLevel)
}
