package types

import "time"

// User represents a forum account.
// It contains identity, profile, membership role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int64 `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// FirstName is the user's given name.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the user's family name.
	LastName string `json:"last_name" db:"last_name"`

	// Email is the user's email address. It is not validated.
	Email string `json:"email" db:"email"`

	// MembershipStatus is the user's role within the forum.
	MembershipStatus Role `json:"membership_status" db:"membership_status"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in responses or views.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsAdmin reports whether the user may moderate posts.
func (u User) IsAdmin() bool {
	return u.MembershipStatus == RoleAdmin
}

// Identity returns a copy of the user without credential material.
func (u User) Identity() User {
	u.PasswordHash = ""
	return u
}
