package services

import "github.com/membersonly/forum/types"

// Authorize decides whether user may act at the required role.
// An empty required role only demands an authenticated identity.
func Authorize(user *types.User, required types.Role) error {
	if user == nil {
		if required == types.RoleAdmin {
			return ErrForbidden
		}
		return ErrUnauthenticated
	}
	if !user.MembershipStatus.Satisfies(required) {
		return ErrForbidden
	}
	return nil
}
