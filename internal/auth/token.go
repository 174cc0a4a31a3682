// ABOUTME: JWT token issuing and verification for authenticating API requests
// ABOUTME: Uses HS256 signing with configurable secret and injectable clock

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpiredToken    = errors.New("token expired")
	ErrMalformedClaims = errors.New("malformed token claims")
)

// Claims holds the identity claims carried by an access token
type Claims struct {
	Username string // "sub" claim
	UserID   string // "uid" claim
}

// TokenIssuer defines the interface for issuing and verifying access tokens
type TokenIssuer interface {
	Issue(username, userID string) (string, error)
	Verify(tokenString string) (*Claims, error)
}

// JWTIssuer implements TokenIssuer using HS256 signed JWTs
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer creates a new JWT issuer with the given secret and token lifetime
func NewJWTIssuer(secret []byte, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the issuer's time source. Used in tests to exercise
// expiry without sleeping.
func (i *JWTIssuer) WithClock(now func() time.Time) *JWTIssuer {
	i.now = now
	return i
}

// Issue creates a new signed token carrying the username and user ID
func (i *JWTIssuer) Issue(username, userID string) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"sub": username,
		"uid": userID,
		"iat": now.Unix(),
		"exp": now.Add(i.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify validates the token signature and expiry and extracts the identity claims.
// Returns ErrExpiredToken for expired tokens, ErrMalformedClaims when a
// structurally valid token is missing identity claims, and ErrInvalidToken
// for everything else.
func (i *JWTIssuer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))

	if err != nil {
		// Check if it's specifically an expiration error
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("%w: sub", ErrMalformedClaims)
	}
	uid, ok := mapClaims["uid"].(string)
	if !ok || uid == "" {
		return nil, fmt.Errorf("%w: uid", ErrMalformedClaims)
	}

	return &Claims{Username: sub, UserID: uid}, nil
}
