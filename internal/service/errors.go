package service

import "errors"

var (
	// ErrUnauthorized covers a missing, expired or unknown session as well as
	// bad credentials. Callers cannot tell these apart.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned when an id does not resolve or belongs to someone else.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable is returned when a backing store fails during a write.
	ErrUnavailable = errors.New("service unavailable")
)

// ValidationError is a client error carrying the message shown to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}
