package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRoleChain(t *testing.T) {
	next, ok := NextRole(RoleHRExecutive)
	require.True(t, ok)
	assert.Equal(t, RoleHRManager, next)

	next, ok = NextRole(RoleHRManager)
	require.True(t, ok)
	assert.Equal(t, RoleHRBP, next)

	next, ok = NextRole(RoleHRBP)
	require.True(t, ok)
	assert.Equal(t, RoleVicePresident, next)
}

func TestNextRoleTopAndOutsiders(t *testing.T) {
	for _, role := range []Role{RoleVicePresident, RoleAdmin, RoleEmployee, RoleTeamLeader} {
		_, ok := NextRole(role)
		assert.False(t, ok, "role %s should have no successor", role)
	}
}

func TestIsHRRole(t *testing.T) {
	assert.True(t, IsHRRole(RoleHRExecutive))
	assert.True(t, IsHRRole(RoleVicePresident))
	assert.True(t, IsHRRole(RoleAdmin))
	assert.False(t, IsHRRole(RoleEmployee))
	assert.False(t, IsHRRole(RoleTeamLeader))
}

func TestRoleRankOrdering(t *testing.T) {
	assert.Less(t, RoleRank(RoleHRExecutive), RoleRank(RoleHRManager))
	assert.Less(t, RoleRank(RoleHRManager), RoleRank(RoleHRBP))
	assert.Less(t, RoleRank(RoleHRBP), RoleRank(RoleVicePresident))
	assert.Equal(t, RoleRank(RoleVicePresident), RoleRank(RoleAdmin))
	assert.Zero(t, RoleRank(RoleEmployee))
}
