// ABOUTME: Account registration and credential verification service
// ABOUTME: bcrypt password hashing with uniform failure on bad credentials

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hearthside/hearth/internal/store"
)

// Service errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidUsername    = errors.New("username must be 3-50 characters")
	ErrInvalidPassword    = errors.New("password must be 8-100 characters")
	ErrInvalidEmail       = errors.New("invalid email address")
)

// dummyHash is compared against when the looked-up user does not exist, so
// that login failures take the same time whether or not the username is known.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("auth: generating dummy hash: %v", err))
	}
	return h
}()

// RegisterRequest carries the fields for creating a new account
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// UpdateRequest carries optional field updates for an existing account.
// Nil pointers leave the corresponding field unchanged.
type UpdateRequest struct {
	Username *string
	Email    *string
	Password *string
	IsActive *bool
}

// Service provides registration and credential verification over a UserStore
type Service struct {
	users  store.UserStore
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates an auth service backed by the given user store
func NewService(users store.UserStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:  users,
		logger: logger.With("component", "auth"),
		now:    time.Now,
	}
}

// Register validates the request, hashes the password, and creates the account.
// New accounts are active and non-privileged. Duplicate usernames and emails
// are rejected with ErrUsernameTaken / ErrEmailTaken; the database unique
// constraints backstop the pre-checks under concurrent registration.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*store.User, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	// Pre-check duplicates for friendly errors; the constraint catches races.
	if _, err := s.users.GetUserByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return nil, fmt.Errorf("checking username: %w", err)
	}
	if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now().UTC()
	user := &store.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsActive:     true,
		IsSuperuser:  false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			return nil, ErrUsernameTaken
		case errors.Is(err, store.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("registered user", "username", user.Username, "id", user.ID)
	return user, nil
}

// Authenticate verifies a username-or-email plus password pair.
// Every failure mode returns ErrInvalidCredentials: unknown identifier, wrong
// password, and deactivated account are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*store.User, error) {
	user, err := s.users.GetUserByUsername(ctx, identifier)
	if errors.Is(err, store.ErrUserNotFound) {
		user, err = s.users.GetUserByEmail(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Burn a bcrypt compare so unknown identifiers cost the same
			// as wrong passwords.
			bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser fetches a user by ID
func (s *Service) GetUser(ctx context.Context, id string) (*store.User, error) {
	return s.users.GetUser(ctx, id)
}

// UpdateUser applies the non-nil fields of req to the user.
// Username and email changes are validated and re-checked for uniqueness
// against other accounts.
func (s *Service) UpdateUser(ctx context.Context, id string, req UpdateRequest) (*store.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && *req.Username != user.Username {
		if len(*req.Username) < 3 || len(*req.Username) > 50 {
			return nil, ErrInvalidUsername
		}
		if existing, err := s.users.GetUserByUsername(ctx, *req.Username); err == nil && existing.ID != id {
			return nil, ErrUsernameTaken
		} else if err != nil && !errors.Is(err, store.ErrUserNotFound) {
			return nil, fmt.Errorf("checking username: %w", err)
		}
		user.Username = *req.Username
	}

	if req.Email != nil && *req.Email != user.Email {
		if !validEmail(*req.Email) {
			return nil, ErrInvalidEmail
		}
		if existing, err := s.users.GetUserByEmail(ctx, *req.Email); err == nil && existing.ID != id {
			return nil, ErrEmailTaken
		} else if err != nil && !errors.Is(err, store.ErrUserNotFound) {
			return nil, fmt.Errorf("checking email: %w", err)
		}
		user.Email = *req.Email
	}

	if req.Password != nil {
		if len(*req.Password) < 8 || len(*req.Password) > 100 {
			return nil, ErrInvalidPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	user.UpdatedAt = s.now().UTC()
	if err := s.users.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			return nil, ErrUsernameTaken
		case errors.Is(err, store.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return user, nil
}

// DeleteUser permanently removes an account
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("deleted user", "id", id)
	return nil
}

func validateRegistration(req RegisterRequest) error {
	if len(req.Username) < 3 || len(req.Username) > 50 {
		return ErrInvalidUsername
	}
	if len(req.Password) < 8 || len(req.Password) > 100 {
		return ErrInvalidPassword
	}
	if !validEmail(req.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// validEmail is a shape check, not RFC 5322 validation: one @ with a
// non-empty local part and a dotted domain.
func validEmail(email string) bool {
	if len(email) == 0 || len(email) > 255 {
		return false
	}
	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") {
		return false
	}
	domain := email[at+1:]
	if domain == "" || strings.Contains(email, " ") {
		return false
	}
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
