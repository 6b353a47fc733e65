package service

import "github.com/joshwa2003/hr-helpdesk/internal/domain"

// CanAccessTicket is the read/update predicate for a ticket. creator may be
// nil when the caller could not load it; the direct-report rule is then
// skipped.
func CanAccessTicket(actor *domain.User, ticket *domain.Ticket, creator *domain.User) bool {
	if actor == nil || ticket == nil {
		return false
	}
	if ticket.CreatedBy == actor.ID {
		return true
	}
	if ticket.AssignedTo != nil && *ticket.AssignedTo == actor.ID {
		return true
	}
	switch actor.Role {
	case domain.RoleVicePresident, domain.RoleAdmin:
		return true
	case domain.RoleTeamLeader:
		// line managers see tickets raised by their direct reports
		return creator != nil && creator.ManagerID != nil && *creator.ManagerID == actor.ID
	}
	if !actor.IsHR() {
		return false
	}
	if ticket.IsConfidential && actor.Role == domain.RoleHRExecutive {
		return false
	}
	// manually assigned tickets are hidden from same-tier category holders;
	// only the assignee (handled above) and higher tiers retain access,
	// whether or not the category routes to their role
	if ticket.IsManuallyAssigned {
		baseTier := domain.RoleRank(EligibleRoles(ticket.Category)[0])
		return domain.RoleRank(actor.Role) > baseTier
	}
	return RoleEligibleForCategory(actor.Role, ticket.Category)
}
