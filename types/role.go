package types

import (
	"fmt"
	"strings"
)

// Role is a closed set of membership levels.
type Role string

const (
	// RoleMember may read and write posts.
	RoleMember Role = "member"
	// RoleAdmin may additionally delete posts.
	RoleAdmin Role = "admin"
)

// ParseRole converts a stored or submitted value into a Role.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleMember:
		return RoleMember, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}

// Satisfies reports whether r grants at least the privileges of required.
// An empty required role means any authenticated member.
func (r Role) Satisfies(required Role) bool {
	switch required {
	case "", RoleMember:
		return r == RoleMember || r == RoleAdmin
	case RoleAdmin:
		return r == RoleAdmin
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}
