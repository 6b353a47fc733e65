package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsConfidentialCategory(t *testing.T) {
	assert.True(t, IsConfidentialCategory(CategoryGrievance))
	assert.True(t, IsConfidentialCategory(CategoryHarassment))
	assert.False(t, IsConfidentialCategory(CategoryLeave))
	assert.False(t, IsConfidentialCategory(CategoryOther))
}

func TestIsValidCategory(t *testing.T) {
	assert.True(t, IsValidCategory(CategorySystemAccess))
	assert.False(t, IsValidCategory("HARDWARE"))
}

func TestIsValidPriority(t *testing.T) {
	assert.True(t, IsValidPriority(TicketPriorityCritical))
	assert.False(t, IsValidPriority("URGENT"))
}

func TestTicketIsTerminal(t *testing.T) {
	ticket := Ticket{Status: TicketStatusClosed}
	// a confirmed close is reopenable, not terminal
	assert.False(t, ticket.IsTerminal())

	ticket.Resolution.PermanentlyClosedByHR = true
	assert.True(t, ticket.IsTerminal())

	ticket.Status = TicketStatusOpen
	assert.False(t, ticket.IsTerminal())
}
