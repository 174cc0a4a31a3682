// ABOUTME: Sentinel errors for the filesystem browser
// ABOUTME: Callers map these to transport-level failures with errors.Is

package browser

import "errors"

var (
	// ErrAccessDenied is returned when a path resolves outside the sandbox
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound is returned when a path does not exist
	ErrNotFound = errors.New("path not found")

	// ErrNotADirectory is returned when a listing target is a regular file
	ErrNotADirectory = errors.New("not a directory")

	// ErrIsADirectory is returned when a file read target is a directory
	ErrIsADirectory = errors.New("is a directory")
)
