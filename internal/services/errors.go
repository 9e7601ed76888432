package services

import "errors"

var (
	// ErrUnknownUser means no account matches the submitted username.
	ErrUnknownUser = errors.New("Incorrect username")
	// ErrBadPassword means the account exists but the password does not match.
	ErrBadPassword = errors.New("Incorrect password")

	// ErrUnauthenticated means the request carries no session identity.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the identity lacks the required role.
	ErrForbidden = errors.New("Forbidden")

	ErrWrongPasscode = errors.New("Incorrect Membership Passcode")
	ErrMissingFields = errors.New("missing required fields")
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmptyPost     = errors.New("post content is required")
	ErrPostNotFound  = errors.New("post not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrLongPassword  = errors.New("password exceeds 72 bytes")
)

// BackendError wraps a store or infrastructure fault.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func backendError(op string, err error) error {
	return &BackendError{Op: op, Err: err}
}
