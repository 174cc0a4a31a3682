// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides user and file metadata persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single pooled connection keeps the session pragmas below in effect
	// for every query and serializes writers, so concurrent inserts surface
	// constraint errors instead of SQLITE_BUSY lock errors
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Block on a locked database instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			is_active     INTEGER NOT NULL DEFAULT 1,
			is_superuser  INTEGER NOT NULL DEFAULT 0,
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
		CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

		CREATE TABLE IF NOT EXISTS file_metadata (
			id           TEXT PRIMARY KEY,
			name         TEXT NOT NULL,
			path         TEXT NOT NULL UNIQUE,
			size         INTEGER NOT NULL DEFAULT 0,
			content_type TEXT,
			owner_id     TEXT REFERENCES users(id) ON DELETE SET NULL,
			created_at   TEXT NOT NULL,
			updated_at   TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_file_metadata_owner ON file_metadata(owner_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

// classifyConstraintViolation maps a SQLite UNIQUE constraint failure to the
// sentinel error for the column that collided. Returns nil for other errors.
func classifyConstraintViolation(err error) error {
	if err == nil {
		return nil
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "UNIQUE constraint failed") &&
		!strings.Contains(errStr, "constraint failed") {
		return nil
	}
	if strings.Contains(errStr, "users.username") {
		return ErrDuplicateUsername
	}
	if strings.Contains(errStr, "users.email") {
		return ErrDuplicateEmail
	}
	if strings.Contains(errStr, "file_metadata.path") {
		return ErrDuplicatePath
	}
	return err
}

// CreateUser inserts a new user.
// Returns ErrDuplicateUsername or ErrDuplicateEmail on unique collisions.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, is_active, is_superuser, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		boolToInt(user.IsActive),
		boolToInt(user.IsSuperuser),
		user.CreatedAt.UTC().Format(time.RFC3339),
		user.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if mapped := classifyConstraintViolation(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Debug("created user", "id", user.ID, "username", user.Username)
	return nil
}

// GetUser retrieves a user by ID.
// Returns ErrUserNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*User, error) {
	return s.getUserWhere(ctx, "id = ?", id)
}

// GetUserByUsername retrieves a user by exact username.
// Returns ErrUserNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.getUserWhere(ctx, "username = ?", username)
}

// GetUserByEmail retrieves a user by exact email.
// Returns ErrUserNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUserWhere(ctx, "email = ?", email)
}

func (s *SQLiteStore) getUserWhere(ctx context.Context, where string, arg any) (*User, error) {
	query := `
		SELECT id, username, email, password_hash, is_active, is_superuser, created_at, updated_at
		FROM users
		WHERE ` + where

	row := s.db.QueryRowContext(ctx, query, arg)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var user User
	var isActive, isSuperuser int
	var createdAt, updatedAt string

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&isActive,
		&isSuperuser,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	user.IsActive = isActive != 0
	user.IsSuperuser = isSuperuser != 0
	if user.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if user.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &user, nil
}

// UpdateUser updates all mutable fields of a user.
// Returns ErrUserNotFound if the user doesn't exist, and the duplicate
// sentinels if the new username or email collides with another user.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *User) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET username = ?, email = ?, password_hash = ?, is_active = ?, is_superuser = ?, updated_at = ?
		WHERE id = ?
	`,
		user.Username,
		user.Email,
		user.PasswordHash,
		boolToInt(user.IsActive),
		boolToInt(user.IsSuperuser),
		user.UpdatedAt.UTC().Format(time.RFC3339),
		user.ID,
	)
	if err != nil {
		if mapped := classifyConstraintViolation(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("updating user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// DeleteUser removes a user by ID.
// Returns ErrUserNotFound if the user doesn't exist.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	s.logger.Debug("deleted user", "id", id)
	return nil
}

// ListUsers returns users ordered by creation time, newest first.
// A limit of 0 or less defaults to 100.
func (s *SQLiteStore) ListUsers(ctx context.Context, limit int) ([]*User, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, email, password_hash, is_active, is_superuser, created_at, updated_at
		FROM users
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var user User
		var isActive, isSuperuser int
		var createdAt, updatedAt string

		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&isActive,
			&isSuperuser,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}

		user.IsActive = isActive != 0
		user.IsSuperuser = isSuperuser != 0
		if user.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if user.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}

		users = append(users, &user)
	}

	return users, rows.Err()
}

// CountUsers returns the total number of users
func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// CreateFile inserts a new file metadata record.
// Returns ErrDuplicatePath if the path is already registered.
func (s *SQLiteStore) CreateFile(ctx context.Context, file *FileMetadata) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO file_metadata (id, name, path, size, content_type, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		file.ID,
		file.Name,
		file.Path,
		file.Size,
		nullIfEmpty(file.ContentType),
		nullIfEmpty(file.OwnerID),
		file.CreatedAt.UTC().Format(time.RFC3339),
		file.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if mapped := classifyConstraintViolation(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("inserting file metadata: %w", err)
	}

	s.logger.Debug("created file record", "id", file.ID, "path", file.Path)
	return nil
}

// GetFile retrieves a file metadata record by ID.
// Returns ErrFileNotFound if the record doesn't exist.
func (s *SQLiteStore) GetFile(ctx context.Context, id string) (*FileMetadata, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, path, size, content_type, owner_id, created_at, updated_at
		FROM file_metadata
		WHERE id = ?
	`, id)

	var file FileMetadata
	var contentType, ownerID sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&file.ID,
		&file.Name,
		&file.Path,
		&file.Size,
		&contentType,
		&ownerID,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning file metadata: %w", err)
	}

	file.ContentType = contentType.String
	file.OwnerID = ownerID.String
	if file.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if file.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &file, nil
}

// ListFiles returns file records, newest first, optionally filtered by owner.
// A limit of 0 or less defaults to 100.
func (s *SQLiteStore) ListFiles(ctx context.Context, ownerID string, limit int) ([]*FileMetadata, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, name, path, size, content_type, owner_id, created_at, updated_at
		FROM file_metadata
	`
	args := []any{}
	if ownerID != "" {
		query += ` WHERE owner_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying file metadata: %w", err)
	}
	defer rows.Close()

	var files []*FileMetadata
	for rows.Next() {
		var file FileMetadata
		var contentType, owner sql.NullString
		var createdAt, updatedAt string

		if err := rows.Scan(
			&file.ID,
			&file.Name,
			&file.Path,
			&file.Size,
			&contentType,
			&owner,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning file metadata: %w", err)
		}

		file.ContentType = contentType.String
		file.OwnerID = owner.String
		if file.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if file.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}

		files = append(files, &file)
	}

	return files, rows.Err()
}

// DeleteFile removes a file metadata record by ID.
// Returns ErrFileNotFound if the record doesn't exist.
func (s *SQLiteStore) DeleteFile(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM file_metadata WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting file metadata: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrFileNotFound
	}

	return nil
}

// FileStats returns aggregate counts over the file metadata table
func (s *SQLiteStore) FileStats(ctx context.Context) (*FileStats, error) {
	var stats FileStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(size), 0) FROM file_metadata
	`).Scan(&stats.TotalFiles, &stats.TotalBytes)
	if err != nil {
		return nil, fmt.Errorf("aggregating file stats: %w", err)
	}
	return &stats, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
