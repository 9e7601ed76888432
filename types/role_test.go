package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	role, err = ParseRole("member")
	require.NoError(t, err)
	assert.Equal(t, RoleMember, role)

	_, err = ParseRole("superuser")
	assert.Error(t, err)

	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestRoleSatisfies(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		required Role
		want     bool
	}{
		{"member any", RoleMember, "", true},
		{"admin any", RoleAdmin, "", true},
		{"member member", RoleMember, RoleMember, true},
		{"member admin", RoleMember, RoleAdmin, false},
		{"admin admin", RoleAdmin, RoleAdmin, true},
		{"unknown admin", Role("admin "), RoleAdmin, false},
		{"unknown any", Role("pending"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.Satisfies(tt.required))
		})
	}
}

func TestUserIdentityDropsHash(t *testing.T) {
	u := User{ID: 1, Username: "ada", PasswordHash: "$2a$10$abc", MembershipStatus: RoleAdmin}
	id := u.Identity()

	assert.Empty(t, id.PasswordHash)
	assert.Equal(t, "$2a$10$abc", u.PasswordHash)
	assert.True(t, id.IsAdmin())
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, Session{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	assert.True(t, Session{ExpiresAt: now}.Expired(now))
	assert.True(t, Session{ExpiresAt: now.Add(-time.Minute)}.Expired(now))
}
