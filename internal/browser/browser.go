// ABOUTME: Sandboxed filesystem browser: directory listings, metadata, file reads
// ABOUTME: Permission triads and a live readable probe per entry, dirs-first ordering

package browser

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Item describes a single file or directory
type Item struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	IsDirectory bool      `json:"is_directory"`
	Size        *int64    `json:"size"` // nil for directories
	Modified    time.Time `json:"modified"`
	Permissions string    `json:"permissions"`
	IsReadable  bool      `json:"is_readable"`
}

// Listing is the result of listing a directory
type Listing struct {
	Path       string `json:"path"`
	Parent     string `json:"parent,omitempty"` // empty at the filesystem root
	Items      []Item `json:"items"`
	TotalItems int    `json:"total_items"`
}

// Browser provides sandboxed filesystem access
type Browser struct {
	sandbox *Sandbox
	logger  *slog.Logger
}

// New creates a Browser confined to the given sandbox
func New(sandbox *Sandbox, logger *slog.Logger) *Browser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Browser{
		sandbox: sandbox,
		logger:  logger.With("component", "browser"),
	}
}

// Roots returns the sandbox's allowed root paths
func (b *Browser) Roots() []string {
	return b.sandbox.Roots()
}

// ListDirectory lists the contents of a directory inside the sandbox.
// Entries that cannot be stat'd are skipped rather than failing the listing.
// Directories sort before files; within each group names compare
// case-insensitively.
func (b *Browser) ListDirectory(ctx context.Context, path string) (*Listing, error) {
	resolved, err := b.sandbox.Resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if notExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("statting directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, path)
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entryPath := filepath.Join(resolved, entry.Name())
		entryInfo, err := entry.Info()
		if err != nil {
			// Skip entries we can't stat
			continue
		}
		items = append(items, makeItem(entryPath, entryInfo))
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].IsDirectory != items[j].IsDirectory {
			return items[i].IsDirectory
		}
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})

	parent := filepath.Dir(resolved)
	if parent == resolved {
		parent = ""
	}

	return &Listing{
		Path:       resolved,
		Parent:     parent,
		Items:      items,
		TotalItems: len(items),
	}, nil
}

// Describe returns metadata for a single file or directory
func (b *Browser) Describe(ctx context.Context, path string) (*Item, error) {
	resolved, err := b.sandbox.Resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if notExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("statting path: %w", err)
	}

	item := makeItem(resolved, info)
	return &item, nil
}

// ReadFile returns a file's full content and metadata.
// Directories are rejected with ErrIsADirectory.
func (b *Browser) ReadFile(ctx context.Context, path string) ([]byte, *Item, error) {
	resolved, err := b.sandbox.Resolve(path)
	if err != nil {
		return nil, nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if notExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, nil, fmt.Errorf("statting file: %w", err)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrIsADirectory, path)
	}

	content, err := os.ReadFile(resolved)
	if err != nil {
		return nil, nil, fmt.Errorf("reading file: %w", err)
	}

	item := makeItem(resolved, info)
	item.IsReadable = true
	b.logger.Debug("read file", "path", resolved, "size", len(content))
	return content, &item, nil
}

// notExist reports whether a stat failure means the path has no target.
// ENOTDIR counts: a path routed through a regular file names nothing.
func notExist(err error) bool {
	return os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR)
}

func makeItem(path string, info fs.FileInfo) Item {
	item := Item{
		Name:        info.Name(),
		Path:        path,
		IsDirectory: info.IsDir(),
		Modified:    info.ModTime(),
		Permissions: permissionTriads(info.Mode()),
		IsReadable:  isReadable(path),
	}
	if !info.IsDir() {
		size := info.Size()
		item.Size = &size
	}
	return item
}

// permissionTriads renders the rwx triads for owner, group, and other
func permissionTriads(mode fs.FileMode) string {
	perm := mode.Perm()
	var buf [9]byte
	chars := [3]byte{'r', 'w', 'x'}
	for i := 0; i < 9; i++ {
		if perm&(1<<(8-i)) != 0 {
			buf[i] = chars[i%3]
		} else {
			buf[i] = '-'
		}
	}
	return string(buf[:])
}

// isReadable probes whether the current process can actually read the path.
// AT_EACCESS checks against the effective uid/gid, which accounts for
// setuid/ACL situations where mode bits diverge from real access.
func isReadable(path string) bool {
	return unix.Faccessat(unix.AT_FDCWD, path, unix.R_OK, unix.AT_EACCESS) == nil
}
