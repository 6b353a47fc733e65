package domain

import "time"

// User is the directory entry for employees and HR agents alike. ManagerID
// links direct reports to their team leader; CreatedAt doubles as the tenure
// signal used by FIFO agent selection.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	ManagerID    *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsHR reports whether the user holds any HR role tier.
func (u *User) IsHR() bool {
	return IsHRRole(u.Role)
}
