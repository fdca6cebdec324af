package access

import (
	dErrors "canopy/pkg/domain-errors"
)

// Role is a capability set controlling which mutations an identity may
// perform.
type Role string

const (
	// RoleAdmin manages policies, units, methodologies, and role grants.
	RoleAdmin Role = "admin"
	// RoleValidator confirms claims with a confidence score.
	RoleValidator Role = "validator"
)

var validRoles = map[Role]bool{
	RoleAdmin:     true,
	RoleValidator: true,
}

// ParseRole constructs a Role from external input.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !validRoles[r] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

func (r Role) String() string { return string(r) }
