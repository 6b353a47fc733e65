package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joshwa2003/hr-helpdesk/internal/domain"
)

func TestEligibleRoles(t *testing.T) {
	tests := []struct {
		category domain.TicketCategory
		want     []domain.Role
	}{
		{domain.CategoryLeave, []domain.Role{domain.RoleHRExecutive}},
		{domain.CategoryAttendance, []domain.Role{domain.RoleHRExecutive}},
		{domain.CategoryOnboarding, []domain.Role{domain.RoleHRExecutive}},
		{domain.CategoryPayroll, []domain.Role{domain.RoleHRManager}},
		{domain.CategoryBenefits, []domain.Role{domain.RoleHRManager}},
		{domain.CategoryPolicy, []domain.Role{domain.RoleHRManager, domain.RoleHRBP}},
		{domain.CategorySystemAccess, []domain.Role{domain.RoleHRExecutive, domain.RoleHRManager}},
		{domain.CategoryGrievance, []domain.Role{domain.RoleHRBP}},
		{domain.CategoryHarassment, []domain.Role{domain.RoleHRBP}},
		{domain.CategoryOther, []domain.Role{domain.RoleHRExecutive}},
	}
	for _, tc := range tests {
		t.Run(string(tc.category), func(t *testing.T) {
			assert.Equal(t, tc.want, EligibleRoles(tc.category))
		})
	}
}

func TestEligibleRolesUnknownCategoryFallsBack(t *testing.T) {
	assert.Equal(t, []domain.Role{domain.RoleHRExecutive}, EligibleRoles("SOMETHING_ELSE"))
}

func TestEligibleRolesReturnsCopy(t *testing.T) {
	roles := EligibleRoles(domain.CategoryPolicy)
	roles[0] = domain.RoleAdmin
	assert.Equal(t, domain.RoleHRManager, EligibleRoles(domain.CategoryPolicy)[0])
}

func TestRoleEligibleForCategory(t *testing.T) {
	assert.True(t, RoleEligibleForCategory(domain.RoleHRBP, domain.CategoryGrievance))
	assert.True(t, RoleEligibleForCategory(domain.RoleHRManager, domain.CategoryPolicy))
	assert.False(t, RoleEligibleForCategory(domain.RoleHRExecutive, domain.CategoryGrievance))
	assert.False(t, RoleEligibleForCategory(domain.RoleHRBP, domain.CategoryLeave))
}
