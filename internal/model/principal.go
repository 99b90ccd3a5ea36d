package model

import "github.com/google/uuid"

// Principal is the authenticated caller resolved from the access token.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsPolitician() bool {
	return p.Role == RolePolitician
}

func (p Principal) IsStaff() bool {
	return p.Role == RoleStaff
}

// HasRole reports whether the principal's role is one of required.
func (p Principal) HasRole(required ...Role) bool {
	for _, r := range required {
		if p.Role == r {
			return true
		}
	}
	return false
}

// CanWrite covers the general write surface: registrations, scheduling,
// queue transitions, issues and resumes.
func (p Principal) CanWrite() bool {
	return p.HasRole(RoleAdmin, RolePolitician, RoleStaff)
}
