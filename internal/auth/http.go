// ABOUTME: HTTP middleware and the Authorize guard for bearer-token requests
// ABOUTME: Two-stage check: verify token, then fetch the user and check status

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hearthside/hearth/internal/store"
)

// Policy selects how much privilege an operation requires
type Policy int

const (
	// PolicyUser requires any active authenticated user
	PolicyUser Policy = iota
	// PolicySuperuser additionally requires the superuser flag
	PolicySuperuser
)

// RejectReason classifies why an authorization attempt failed. Consumers map
// these to transport-specific failures (HTTP status codes, WebSocket close
// codes).
type RejectReason int

const (
	RejectNone RejectReason = iota
	RejectMissingToken
	RejectInvalidToken
	RejectMalformedClaims
	RejectUnknownUser
	RejectInactiveUser
	RejectNotSuperuser
)

// Guard authorizes bearer tokens against the user store
type Guard struct {
	tokens TokenIssuer
	users  store.UserStore
}

// NewGuard creates a Guard from a token issuer and user store
func NewGuard(tokens TokenIssuer, users store.UserStore) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// Authorize verifies the token, loads the identity behind it, and checks it
// against the policy. On success the returned AuthContext describes the
// caller; on failure the RejectReason says which stage refused it.
func (g *Guard) Authorize(ctx context.Context, token string, policy Policy) (*AuthContext, RejectReason) {
	if token == "" {
		return nil, RejectMissingToken
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, ErrMalformedClaims) {
			return nil, RejectMalformedClaims
		}
		return nil, RejectInvalidToken
	}

	user, err := g.users.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, RejectUnknownUser
	}
	if !user.IsActive {
		return nil, RejectInactiveUser
	}

	if policy == PolicySuperuser && !user.IsSuperuser {
		return nil, RejectNotSuperuser
	}

	return &AuthContext{
		UserID:      user.ID,
		Username:    user.Username,
		IsSuperuser: user.IsSuperuser,
	}, RejectNone
}

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// rejectMessage maps a RejectReason to an HTTP error message and status code.
func rejectMessage(reason RejectReason) (string, int) {
	switch reason {
	case RejectMissingToken:
		return "missing authorization header", http.StatusUnauthorized
	case RejectInvalidToken:
		return "invalid or expired token", http.StatusUnauthorized
	case RejectMalformedClaims:
		return "malformed token claims", http.StatusUnauthorized
	case RejectUnknownUser:
		return "user not found", http.StatusUnauthorized
	case RejectInactiveUser:
		return "account is inactive", http.StatusForbidden
	case RejectNotSuperuser:
		return "superuser privileges required", http.StatusForbidden
	default:
		return "unauthorized", http.StatusUnauthorized
	}
}

// RequireUser creates an HTTP middleware that requires an active
// authenticated user and adds the AuthContext to the request context.
func (g *Guard) RequireUser(next http.Handler) http.Handler {
	return g.requirePolicy(PolicyUser, next)
}

// RequireSuperuser creates an HTTP middleware that additionally requires
// the superuser flag.
func (g *Guard) RequireSuperuser(next http.Handler) http.Handler {
	return g.requirePolicy(PolicySuperuser, next)
}

func (g *Guard) requirePolicy(policy Policy, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
		if errMsg != "" {
			http.Error(w, `{"error":"`+errMsg+`"}`, http.StatusUnauthorized)
			return
		}

		authCtx, reason := g.Authorize(r.Context(), token, policy)
		if reason != RejectNone {
			msg, status := rejectMessage(reason)
			http.Error(w, `{"error":"`+msg+`"}`, status)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), authCtx)))
	})
}
