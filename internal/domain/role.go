package domain

import (
	"fmt"     // Error formatting
	"strings" // Case folding
)

// Role of a user, stored on UserDetails
type Role string

// Known roles
const (
	RoleUser       Role = "USER"       // Regular user
	RoleGroupAdmin Role = "GROUPADMIN" // Group administrator
	RoleSuperAdmin Role = "SUPERADMIN" // Super administrator
)

// Roles returns every valid role
func Roles() []Role {
	return []Role{RoleUser, RoleGroupAdmin, RoleSuperAdmin}
}

// ParseRole converts a case-insensitive role name into a Role
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s))) // Normalize input
	for _, known := range Roles() {
		if r == known {
			return r, nil // Valid role
		}
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s) // Unknown role
}

// IsAdmin reports whether the role carries administrative rights
func (r Role) IsAdmin() bool {
	return r == RoleGroupAdmin || r == RoleSuperAdmin
}

// StaffFlags returns the is_staff and is_superuser values matching the role
func (r Role) StaffFlags() (staff, superuser bool) {
	return r.IsAdmin(), r == RoleSuperAdmin
}

// Actor is the pre-validated identity a request acts as
type Actor struct {
	UserID uint // Acting owner
	Role   Role // Role loaded from UserDetails
}
