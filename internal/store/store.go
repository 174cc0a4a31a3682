// ABOUTME: Store interfaces and data types for hearth persistence
// ABOUTME: Defines User, FileMetadata structs and the UserStore/FileStore interfaces

package store

import (
	"context"
	"errors"
	"time"
)

// ErrUserNotFound is returned when a requested user does not exist
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateUsername is returned when a username is already taken
var ErrDuplicateUsername = errors.New("username already exists")

// ErrDuplicateEmail is returned when an email is already registered
var ErrDuplicateEmail = errors.New("email already exists")

// ErrFileNotFound is returned when a requested file record does not exist
var ErrFileNotFound = errors.New("file not found")

// ErrDuplicatePath is returned when a file path is already registered
var ErrDuplicatePath = errors.New("file path already registered")

// User represents a registered account
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FileMetadata represents a tracked file record
type FileMetadata struct {
	ID          string
	Name        string
	Path        string
	Size        int64
	ContentType string
	OwnerID     string // empty for unowned files
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FileStats summarizes the tracked file table for monitoring snapshots
type FileStats struct {
	TotalFiles int64
	TotalBytes int64
}

// UserStore defines the interface for user persistence
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context, limit int) ([]*User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// FileStore defines the interface for file metadata persistence
type FileStore interface {
	CreateFile(ctx context.Context, file *FileMetadata) error
	GetFile(ctx context.Context, id string) (*FileMetadata, error)
	ListFiles(ctx context.Context, ownerID string, limit int) ([]*FileMetadata, error)
	DeleteFile(ctx context.Context, id string) error
	FileStats(ctx context.Context) (*FileStats, error)
}

// Store combines all persistence interfaces with resource cleanup
type Store interface {
	UserStore
	FileStore

	// Close releases any resources held by the store
	Close() error
}
