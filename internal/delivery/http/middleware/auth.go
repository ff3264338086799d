package middleware

import (
	"context"
	"net/http"
	"strings"

	h "eventlistings/internal/delivery/http/helpers"
	"eventlistings/internal/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// SetIdentity returns a context carrying the authenticated identity. Used by
// the auth middleware.
func SetIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the authenticated identity from the context,
// or nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *domain.Identity {
	identity, _ := ctx.Value(identityKey).(*domain.Identity)
	return identity
}

// bearerToken extracts the token from the Authorization header. The second
// return is false when the header is absent; a present but malformed header
// yields an empty token.
func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", true
	}
	return strings.TrimSpace(auth[len(prefix):]), true
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the
// identity in the request context. Missing or invalid credentials get a 401
// and next is not called.
func RequireAuth(verifier domain.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, present := bearerToken(r)
			if !present {
				h.WriteError(w, http.StatusUnauthorized, h.ErrKindNotAuthenticated, "Authentication credentials were not provided.", nil)
				return
			}
			if token == "" {
				h.WriteError(w, http.StatusUnauthorized, h.ErrKindAuthFailed, "Invalid authorization header format.", nil)
				return
			}
			identity, err := verifier.Verify(token)
			if err != nil {
				h.WriteError(w, http.StatusUnauthorized, h.ErrKindAuthFailed, "Invalid or expired token.", nil)
				return
			}
			next(w, r.WithContext(SetIdentity(r.Context(), identity)))
		}
	}
}

// OptionalAuth returns a wrapper that sets the identity when a valid Bearer
// token is supplied and leaves the request anonymous when the header is
// absent. A supplied but invalid token is still a 401: a caller presenting
// bad credentials is not silently downgraded to anonymous.
func OptionalAuth(verifier domain.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, present := bearerToken(r)
			if !present {
				next(w, r)
				return
			}
			identity, err := verifier.Verify(token)
			if err != nil {
				h.WriteError(w, http.StatusUnauthorized, h.ErrKindAuthFailed, "Invalid or expired token.", nil)
				return
			}
			next(w, r.WithContext(SetIdentity(r.Context(), identity)))
		}
	}
}
