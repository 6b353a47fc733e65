package domain

// Role enumerates the fixed HR authority levels plus employee-side roles.
type Role string

const (
	RoleEmployee      Role = "EMPLOYEE"
	RoleTeamLeader    Role = "TEAM_LEADER"
	RoleHRExecutive   Role = "HR_EXECUTIVE"
	RoleHRManager     Role = "HR_MANAGER"
	RoleHRBP          Role = "HR_BP"
	RoleVicePresident Role = "VICE_PRESIDENT"
	RoleAdmin         Role = "ADMIN"
)

// escalationChain is the fixed upward path for SLA escalations. Roles outside
// the chain (Admin included) have no successor.
var escalationChain = map[Role]Role{
	RoleHRExecutive: RoleHRManager,
	RoleHRManager:   RoleHRBP,
	RoleHRBP:        RoleVicePresident,
}

// NextRole returns the next tier in the escalation chain, or false when the
// current role sits at the top.
func NextRole(current Role) (Role, bool) {
	next, ok := escalationChain[current]
	return next, ok
}

// IsHRRole reports whether the role belongs to the HR side of the help desk.
func IsHRRole(role Role) bool {
	switch role {
	case RoleHRExecutive, RoleHRManager, RoleHRBP, RoleVicePresident, RoleAdmin:
		return true
	}
	return false
}

var roleRank = map[Role]int{
	RoleHRExecutive:   1,
	RoleHRManager:     2,
	RoleHRBP:          3,
	RoleVicePresident: 4,
	RoleAdmin:         4,
}

// RoleRank returns the tier height of an HR role; non-HR roles rank zero.
func RoleRank(role Role) int {
	return roleRank[role]
}
