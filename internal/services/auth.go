package services

import (
	"context"
	"errors"

	"github.com/membersonly/forum/internal/store"
	"github.com/membersonly/forum/types"
)

// CredentialStore is the subset of user persistence needed to log in.
type CredentialStore interface {
	GetByUsername(ctx context.Context, username string) (types.User, error)
}

// AuthService implements the username/password strategy.
type AuthService struct {
	users  CredentialStore
	hasher PasswordHasher
}

func NewAuthService(users CredentialStore, hasher PasswordHasher) *AuthService {
	return &AuthService{users: users, hasher: hasher}
}

// Authenticate resolves a username/password pair to a verified identity.
// The returned user never carries the password hash.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (types.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUnknownUser
		}
		return types.User{}, backendError("find user", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return types.User{}, ErrBadPassword
	}

	return user.Identity(), nil
}
