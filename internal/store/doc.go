// Package store provides persistent storage for hearth using SQLite.
//
// # Interfaces
//
//   - UserStore: account CRUD and lookups by ID, username, or email
//   - FileStore: managed file metadata and aggregate stats
//   - Store: the composition of both plus Close
//
// SQLiteStore implements all of them in one struct; consumers depend on the
// narrowest interface they need.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Times are stored as RFC 3339 TEXT columns in UTC.
//
// # Error Handling
//
// Common errors:
//
//   - ErrUserNotFound / ErrFileNotFound: entity does not exist
//   - ErrDuplicateUsername / ErrDuplicateEmail / ErrDuplicatePath: unique
//     constraint violated
//
// Duplicate errors are derived from the SQLite constraint violation, so the
// database remains the backstop even when callers pre-check uniqueness.
// All methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewMockStore() for unit tests and NewSQLiteStore with a temp file for
// integration tests with real SQLite.
package store
