// ABOUTME: Tests for JWT token issuing and verification
// ABOUTME: Covers round-trips, expiry via injected clock, and malformed tokens

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewJWTIssuer([]byte("test-secret"), time.Hour)

	token, err := issuer.Issue("alice", "user-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want %q", claims.Username, "alice")
	}
	if claims.UserID != "user-123" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-123")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewJWTIssuer([]byte("secret-a"), time.Hour)
	other := NewJWTIssuer([]byte("secret-b"), time.Hour)

	token, err := issuer.Issue("alice", "user-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = other.Verify(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	base := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	clock := base
	issuer := NewJWTIssuer([]byte("test-secret"), time.Hour).WithClock(func() time.Time {
		return clock
	})

	token, err := issuer.Issue("alice", "user-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Still valid just before expiry
	clock = base.Add(59 * time.Minute)
	if _, err := issuer.Verify(token); err != nil {
		t.Fatalf("Verify before expiry failed: %v", err)
	}

	// Expired after the TTL elapses
	clock = base.Add(2 * time.Hour)
	_, err = issuer.Verify(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	issuer := NewJWTIssuer([]byte("test-secret"), time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not a jwt", "not-a-token"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestVerify_MissingClaims(t *testing.T) {
	secret := []byte("test-secret")
	issuer := NewJWTIssuer(secret, time.Hour)

	// A well-signed token missing the uid claim
	now := time.Now()
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	})
	token, err := raw.SignedString(secret)
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}

	_, err = issuer.Verify(token)
	if !errors.Is(err, ErrMalformedClaims) {
		t.Errorf("expected ErrMalformedClaims, got %v", err)
	}
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	issuer := NewJWTIssuer([]byte("test-secret"), time.Hour)

	raw := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "alice",
		"uid": "user-123",
	})
	token, err := raw.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}

	_, err = issuer.Verify(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for alg=none, got %v", err)
	}
}
