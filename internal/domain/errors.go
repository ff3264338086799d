package domain

import "errors"

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrEventFull          = errors.New("event is full")
	ErrRegistrationClosed = errors.New("registration is closed for this event")
	ErrDuplicateEmail     = errors.New("a user with this email already exists")
	ErrDuplicateName      = errors.New("a category with this name already exists")
	ErrDuplicateUsername  = errors.New("a user with this username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInactiveAccount    = errors.New("user account is disabled")
)
