// ABOUTME: Tests for the Guard authorization stages and HTTP middleware
// ABOUTME: Covers reject reasons, policy checks, and context propagation

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hearthside/hearth/internal/store"
)

func newTestGuard(t *testing.T) (*Guard, *JWTIssuer, *store.MockStore) {
	t.Helper()
	users := store.NewMockStore()
	issuer := NewJWTIssuer([]byte("test-secret"), time.Hour)
	return NewGuard(issuer, users), issuer, users
}

func seedUser(t *testing.T, users *store.MockStore, username string, active, superuser bool) *store.User {
	t.Helper()
	now := time.Now().UTC()
	user := &store.User{
		ID:          "id-" + username,
		Username:    username,
		Email:       username + "@example.com",
		IsActive:    active,
		IsSuperuser: superuser,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := users.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return user
}

func TestAuthorize(t *testing.T) {
	guard, issuer, users := newTestGuard(t)
	ctx := context.Background()

	active := seedUser(t, users, "alice", true, false)
	seedUser(t, users, "dormant", false, false)
	super := seedUser(t, users, "root", true, true)

	activeToken, _ := issuer.Issue(active.Username, active.ID)
	dormantToken, _ := issuer.Issue("dormant", "id-dormant")
	superToken, _ := issuer.Issue(super.Username, super.ID)
	orphanToken, _ := issuer.Issue("ghost", "id-ghost")
	expired, _ := NewJWTIssuer([]byte("test-secret"), -time.Hour).Issue("alice", active.ID)

	tests := []struct {
		name   string
		token  string
		policy Policy
		want   RejectReason
	}{
		{"active user accepted", activeToken, PolicyUser, RejectNone},
		{"superuser accepted as user", superToken, PolicyUser, RejectNone},
		{"superuser accepted as superuser", superToken, PolicySuperuser, RejectNone},
		{"plain user rejected as superuser", activeToken, PolicySuperuser, RejectNotSuperuser},
		{"missing token", "", PolicyUser, RejectMissingToken},
		{"garbage token", "garbage", PolicyUser, RejectInvalidToken},
		{"expired token", expired, PolicyUser, RejectInvalidToken},
		{"unknown user", orphanToken, PolicyUser, RejectUnknownUser},
		{"inactive user", dormantToken, PolicyUser, RejectInactiveUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authCtx, reason := guard.Authorize(ctx, tt.token, tt.policy)
			if reason != tt.want {
				t.Errorf("reason = %v, want %v", reason, tt.want)
			}
			if tt.want == RejectNone && authCtx == nil {
				t.Error("expected non-nil AuthContext on success")
			}
			if tt.want != RejectNone && authCtx != nil {
				t.Error("expected nil AuthContext on failure")
			}
		})
	}
}

func TestRequireUser(t *testing.T) {
	guard, issuer, users := newTestGuard(t)
	user := seedUser(t, users, "alice", true, false)
	token, _ := issuer.Issue(user.Username, user.ID)

	var gotAuth *AuthContext
	handler := guard.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// Valid token passes and populates context
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotAuth == nil || gotAuth.UserID != user.ID || gotAuth.Username != "alice" {
		t.Errorf("AuthContext = %+v, want alice", gotAuth)
	}

	// Missing header is a 401
	req = httptest.NewRequest("GET", "/protected", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	// Wrong scheme is a 401
	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireSuperuser(t *testing.T) {
	guard, issuer, users := newTestGuard(t)
	plain := seedUser(t, users, "alice", true, false)
	super := seedUser(t, users, "root", true, true)

	handler := guard.RequireSuperuser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	plainToken, _ := issuer.Issue(plain.Username, plain.ID)
	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+plainToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("plain user status = %d, want 403", rec.Code)
	}

	superToken, _ := issuer.Issue(super.Username, super.ID)
	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+superToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("superuser status = %d, want 200", rec.Code)
	}
}

func TestFromContext_Missing(t *testing.T) {
	if auth := FromContext(context.Background()); auth != nil {
		t.Errorf("expected nil AuthContext, got %+v", auth)
	}
}
