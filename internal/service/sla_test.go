package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/joshwa2003/hr-helpdesk/internal/domain"
)

func TestComputeSLAPriorityMatrix(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		priority       domain.TicketPriority
		wantResponse   int
		wantResolution int
	}{
		{domain.TicketPriorityCritical, 1, 4},
		{domain.TicketPriorityHigh, 4, 24},
		{domain.TicketPriorityMedium, 8, 48},
		{domain.TicketPriorityLow, 24, 72},
	}
	for _, tc := range tests {
		t.Run(string(tc.priority), func(t *testing.T) {
			sla := ComputeSLA(tc.priority, domain.CategoryLeave, "", createdAt)
			assert.Equal(t, tc.wantResponse, sla.ResponseHours)
			assert.Equal(t, tc.wantResolution, sla.ResolutionHours)
			assert.Equal(t, createdAt.Add(time.Duration(tc.wantResponse)*time.Hour), sla.ResponseDeadline)
			assert.Equal(t, createdAt.Add(time.Duration(tc.wantResolution)*time.Hour), sla.ResolutionDeadline)
		})
	}
}

func TestComputeSLACategoryOverridesPriority(t *testing.T) {
	createdAt := time.Now()

	// grievance/harassment always get the tight window, even on Low
	for _, category := range []domain.TicketCategory{domain.CategoryGrievance, domain.CategoryHarassment} {
		sla := ComputeSLA(domain.TicketPriorityLow, category, "", createdAt)
		assert.Equal(t, 1, sla.ResponseHours)
		assert.Equal(t, 24, sla.ResolutionHours)
	}

	sla := ComputeSLA(domain.TicketPriorityLow, domain.CategoryPayroll, "", createdAt)
	assert.Equal(t, 4, sla.ResponseHours)
	assert.Equal(t, 24, sla.ResolutionHours)
}

func TestComputeSLASystemAccessSubcategories(t *testing.T) {
	createdAt := time.Now()

	locked := ComputeSLA(domain.TicketPriorityMedium, domain.CategorySystemAccess, "ACCOUNT_LOCKED", createdAt)
	assert.Equal(t, 2, locked.ResponseHours)
	assert.Equal(t, 8, locked.ResolutionHours)

	// subcategory match is case-insensitive
	lowercase := ComputeSLA(domain.TicketPriorityMedium, domain.CategorySystemAccess, "account_locked", createdAt)
	assert.Equal(t, 8, lowercase.ResolutionHours)

	other := ComputeSLA(domain.TicketPriorityMedium, domain.CategorySystemAccess, "VPN", createdAt)
	assert.Equal(t, 2, other.ResponseHours)
	assert.Equal(t, 12, other.ResolutionHours)
}

func TestComputeSLAUnknownPriorityDefaultsToMedium(t *testing.T) {
	sla := ComputeSLA("WHATEVER", domain.CategoryLeave, "", time.Now())
	assert.Equal(t, 8, sla.ResponseHours)
	assert.Equal(t, 48, sla.ResolutionHours)
}
