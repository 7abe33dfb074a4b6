package domain

import "github.com/google/uuid"

// Role identifies the authorization level of a user.
type Role string

const (
	// RoleUser is the default role for registered users.
	RoleUser Role = "user"

	// RoleAdmin grants unrestricted access to every task, user task and
	// subtask regardless of ownership.
	RoleAdmin Role = "admin"
)

// IsValid reports whether the role is one of the known values.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Principal is the authenticated caller of a service operation, resolved by
// the authentication middleware from a bearer token or session cookie.
// Services only ever consume the ID and Role.
type Principal struct {
	ID   uuid.UUID
	Role Role
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Is reports whether the principal is the user with the given ID.
func (p Principal) Is(userID uuid.UUID) bool {
	return p.ID == userID
}
