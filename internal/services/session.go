package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/membersonly/forum/internal/store"
	"github.com/membersonly/forum/types"
)

const defaultSessionTTL = 24 * time.Hour

// SessionRepository defines persistence operations for sessions.
type SessionRepository interface {
	Create(ctx context.Context, session types.Session) (types.Session, error)
	Get(ctx context.Context, id string) (types.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// UserLookup resolves a serialized identity back to a user record.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (types.User, error)
}

// SessionManager maps authenticated identities to durable session tokens
// and back. The token held by the client is an HMAC-signed envelope around
// a random session id; the user id lives only in the sessions table.
type SessionManager struct {
	sessions SessionRepository
	users    UserLookup
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	method   jwt.SigningMethod
}

func NewSessionManager(sessions SessionRepository, users UserLookup, secret string, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionManager{
		sessions: sessions,
		users:    users,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
		method:   jwt.SigningMethodHS256,
	}
}

// TTL returns the lifetime given to new sessions.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Serialize persists a session for user and returns the client token.
func (m *SessionManager) Serialize(ctx context.Context, user types.User) (string, time.Time, error) {
	now := m.now()
	session, err := m.sessions.Create(ctx, types.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(m.ttl),
	})
	if err != nil {
		return "", time.Time{}, backendError("create session", err)
	}

	token, err := m.sign(session.ID, now, session.ExpiresAt)
	if err != nil {
		if delErr := m.sessions.Delete(ctx, session.ID); delErr != nil {
			err = errors.Join(err, delErr)
		}
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, session.ExpiresAt, nil
}

// Deserialize resolves a client token to the current user.
// Any token that does not lead to a live session and an existing user
// resolves to nil without error. Store faults return a *BackendError.
func (m *SessionManager) Deserialize(ctx context.Context, token string) (*types.User, error) {
	sessionID, err := m.parse(token)
	if err != nil {
		return nil, nil
	}

	session, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, backendError("load session", err)
	}

	if session.Expired(m.now()) {
		if err := m.sessions.Delete(ctx, session.ID); err != nil {
			return nil, backendError("delete expired session", err)
		}
		return nil, nil
	}

	user, err := m.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, backendError("load session user", err)
	}

	identity := user.Identity()
	return &identity, nil
}

// Destroy removes the session behind token. Unparseable tokens are ignored.
func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	sessionID, err := m.parse(token)
	if err != nil {
		return nil
	}
	if err := m.sessions.Delete(ctx, sessionID); err != nil {
		return backendError("delete session", err)
	}
	return nil
}

// Prune deletes every expired session and reports how many were removed.
func (m *SessionManager) Prune(ctx context.Context) (int64, error) {
	n, err := m.sessions.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, backendError("prune sessions", err)
	}
	return n, nil
}

func (m *SessionManager) sign(sessionID string, issuedAt, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(m.method, claims)
	return token.SignedString(m.secret)
}

func (m *SessionManager) parse(tokenString string) (string, error) {
	if strings.TrimSpace(tokenString) == "" {
		return "", errors.New("empty token")
	}

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}

	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return "", fmt.Errorf("invalid session id: %w", err)
	}
	return id.String(), nil
}
