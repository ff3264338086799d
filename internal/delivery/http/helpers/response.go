package helpers

import (
	"encoding/json"
	"net/http"
	"time"
)

// Error kinds used in the error envelope. The kind identifies the failure
// class so clients can branch without parsing messages.
const (
	ErrKindValidation       = "validationerror"
	ErrKindParse            = "parseerror"
	ErrKindNotAuthenticated = "notauthenticated"
	ErrKindAuthFailed       = "authenticationfailed"
	ErrKindPermissionDenied = "permissiondenied"
	ErrKindNotFound         = "notfound"
	ErrKindAPI              = "api"
)

// ErrorResponse is the envelope for all error responses. Success responses
// are plain resource projections with no envelope.
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Details   any       `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// WriteJSON sets Content-Type to application/json, writes statusCode, and
// encodes v as the response body.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an ErrorResponse with the given kind, human-readable
// message, and optional structured details.
func WriteError(w http.ResponseWriter, statusCode int, kind, message string, details any) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error:     kind,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}
