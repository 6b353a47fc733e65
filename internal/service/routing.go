package service

import "github.com/joshwa2003/hr-helpdesk/internal/domain"

// categoryRouting maps each ticket category to the ordered set of HR role
// tiers allowed to work it. Order matters: the first role is the tier a fresh
// ticket lands on, later roles are higher tiers that share the category.
var categoryRouting = map[domain.TicketCategory][]domain.Role{
	domain.CategoryLeave:        {domain.RoleHRExecutive},
	domain.CategoryAttendance:   {domain.RoleHRExecutive},
	domain.CategoryOnboarding:   {domain.RoleHRExecutive},
	domain.CategoryPayroll:      {domain.RoleHRManager},
	domain.CategoryBenefits:     {domain.RoleHRManager},
	domain.CategoryPolicy:       {domain.RoleHRManager, domain.RoleHRBP},
	domain.CategorySystemAccess: {domain.RoleHRExecutive, domain.RoleHRManager},
	domain.CategoryGrievance:    {domain.RoleHRBP},
	domain.CategoryHarassment:   {domain.RoleHRBP},
	domain.CategoryOther:        {domain.RoleHRExecutive},
}

// EligibleRoles returns the HR role tiers that may handle the category.
// Unknown categories fall back to the lowest tier.
func EligibleRoles(category domain.TicketCategory) []domain.Role {
	if roles, ok := categoryRouting[category]; ok {
		out := make([]domain.Role, len(roles))
		copy(out, roles)
		return out
	}
	return []domain.Role{domain.RoleHRExecutive}
}

// RoleEligibleForCategory reports whether the role is in the category's
// routing set.
func RoleEligibleForCategory(role domain.Role, category domain.TicketCategory) bool {
	for _, eligible := range EligibleRoles(category) {
		if eligible == role {
			return true
		}
	}
	return false
}
