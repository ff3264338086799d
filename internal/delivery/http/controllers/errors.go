package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventlistings/internal/delivery/http/helpers"
	"eventlistings/internal/domain"
)

// writeDomainError maps a service error to the error envelope. Anything
// unrecognized is a 500 and gets logged; known domain errors are the caller's
// fault and are not.
func writeDomainError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs domain.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		helpers.WriteError(w, http.StatusBadRequest, helpers.ErrKindValidation, "Invalid input.", fieldErrs)
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		helpers.WriteError(w, http.StatusNotFound, helpers.ErrKindNotFound, "Not found.", nil)
	case errors.Is(err, domain.ErrNotAuthenticated):
		helpers.WriteError(w, http.StatusUnauthorized, helpers.ErrKindNotAuthenticated, "Authentication credentials were not provided.", nil)
	case errors.Is(err, domain.ErrInvalidCredentials):
		helpers.WriteError(w, http.StatusUnauthorized, helpers.ErrKindAuthFailed, "Invalid username or password.", nil)
	case errors.Is(err, domain.ErrInactiveAccount):
		helpers.WriteError(w, http.StatusUnauthorized, helpers.ErrKindAuthFailed, "User account is disabled.", nil)
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteError(w, http.StatusForbidden, helpers.ErrKindPermissionDenied, "You do not have permission to perform this action.", nil)
	case errors.Is(err, domain.ErrEventFull):
		helpers.WriteError(w, http.StatusBadRequest, helpers.ErrKindAPI, "This event is full.", nil)
	case errors.Is(err, domain.ErrRegistrationClosed):
		helpers.WriteError(w, http.StatusBadRequest, helpers.ErrKindAPI, "Registration is closed for this event.", nil)
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteError(w, http.StatusInternalServerError, helpers.ErrKindAPI, "An unexpected error occurred.", nil)
	}
}
