package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/membersonly/forum/internal/store"
	"github.com/membersonly/forum/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateRole(ctx context.Context, username string, role types.Role) error
}

// ActivityPublisher receives forum activity after successful mutations.
// Implementations must not block the caller on delivery failures.
type ActivityPublisher interface {
	Publish(ctx context.Context, event types.ActivityEvent)
}

// SignupRequest carries the submitted signup form.
type SignupRequest struct {
	Username         string
	Password         string
	FirstName        string
	LastName         string
	Email            string
	MembershipStatus string
	Passcode         string
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo     UserRepository
	hasher   PasswordHasher
	passcode string
	events   ActivityPublisher
}

func NewUserService(repo UserRepository, hasher PasswordHasher, passcode string, events ActivityPublisher) *UserService {
	return &UserService{
		repo:     repo,
		hasher:   hasher,
		passcode: passcode,
		events:   events,
	}
}

func (s *UserService) GetByID(ctx context.Context, id int64) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// List returns every member without credential material.
func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, backendError("list users", err)
	}
	for i := range users {
		users[i] = users[i].Identity()
	}
	return users, nil
}

// Signup admits a new member after checking the shared passcode.
func (s *UserService) Signup(ctx context.Context, req SignupRequest) (types.User, error) {
	if !s.passcodeMatches(req.Passcode) {
		return types.User{}, ErrWrongPasscode
	}

	req.Username = strings.TrimSpace(req.Username)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" || req.Email == "" {
		return types.User{}, ErrMissingFields
	}

	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return types.User{}, ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, backendError("check username", err)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Username:         req.Username,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		MembershipStatus: signupRole(req.MembershipStatus),
		PasswordHash:     hashed,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, ErrUsernameTaken
		}
		return types.User{}, backendError("create user", err)
	}

	s.publish(ctx, types.ActivityEvent{
		Type:       types.ActivityUserSignedUp,
		UserID:     user.ID,
		OccurredAt: time.Now().UTC(),
	})

	return user.Identity(), nil
}

// SetRole changes a member's role. Used by the operator CLI.
func (s *UserService) SetRole(ctx context.Context, username string, role types.Role) error {
	if err := s.repo.UpdateRole(ctx, username, role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return backendError("update role", err)
	}
	return nil
}

func (s *UserService) passcodeMatches(submitted string) bool {
	if s.passcode == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(s.passcode)) == 1
}

func (s *UserService) publish(ctx context.Context, event types.ActivityEvent) {
	if s.events != nil {
		s.events.Publish(ctx, event)
	}
}

// signupRole maps the submitted membership field onto a role.
// Only the exact value "admin" grants admin; case and spacing are not folded.
func signupRole(value string) types.Role {
	if value == string(types.RoleAdmin) {
		return types.RoleAdmin
	}
	return types.RoleMember
}
