// Package auth provides authentication and authorization for hearth.
//
// # Credentials
//
// Accounts carry a username, email, and bcrypt password hash. Registration
// validates username (3-50 chars), password (8-100 chars), and email shape
// before hashing. Authentication accepts the username or the email as the
// identifier and fails uniformly: an unknown identifier, a wrong password,
// and a deactivated account all return ErrInvalidCredentials, with a dummy
// bcrypt comparison on the unknown-identifier path so response timing does
// not reveal whether the account exists.
//
// # Tokens
//
// Access tokens are JWTs signed with HS256 using the configured jwt_secret:
//
//	issuer := auth.NewJWTIssuer(secret, 24*time.Hour)
//	token, err := issuer.Issue(user.Username, user.ID)
//	claims, err := issuer.Verify(token)
//
// Claims carry the username (sub), user ID (uid), issue time, and expiry.
// Verification rejects bad signatures, expired tokens, and tokens missing
// the identity claims, each with a distinct sentinel error.
//
// # Authorization
//
// Guard performs the two-stage check used by every protected surface: verify
// the token, then fetch the user and confirm it still exists and is active.
// A valid token for a deleted or deactivated account is rejected. Authorize
// returns a RejectReason so transports can map failures to their own codes
// (HTTP 401/403, WebSocket close codes).
//
// HTTP handlers are protected with the middleware:
//
//	mux.Handle("GET /api/v1/auth/me", guard.RequireUser(handler))
//	mux.Handle("GET /api/v1/auth/users/{id}", guard.RequireSuperuser(handler))
//
// On success the request context carries an AuthContext, retrievable with
// FromContext or MustFromContext.
package auth
