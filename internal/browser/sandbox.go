// ABOUTME: Path sandbox restricting filesystem access to an allow-list of roots
// ABOUTME: Paths are fully resolved (symlinks, ..) before the prefix check

package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Sandbox confines filesystem access to a set of root directories.
// An empty root list is an explicit opt-out: every path is allowed.
type Sandbox struct {
	roots []string
}

// NewSandbox creates a sandbox from the given root directories.
// Roots must be absolute paths; they are cleaned and symlink-resolved once
// at construction so comparisons happen in canonical space.
func NewSandbox(roots []string) (*Sandbox, error) {
	resolved := make([]string, 0, len(roots))
	for _, root := range roots {
		if !filepath.IsAbs(root) {
			return nil, fmt.Errorf("sandbox root %q is not absolute", root)
		}
		canonical, err := canonicalize(root)
		if err != nil {
			return nil, fmt.Errorf("resolving sandbox root %q: %w", root, err)
		}
		resolved = append(resolved, canonical)
	}
	return &Sandbox{roots: resolved}, nil
}

// Roots returns the canonical allowed root paths
func (s *Sandbox) Roots() []string {
	out := make([]string, len(s.roots))
	copy(out, s.roots)
	return out
}

// Resolve canonicalizes the path and checks it against the allow-list.
// Returns the canonical path on success and ErrAccessDenied when the
// resolved path falls outside every root. The check runs on the resolved
// path, so symlinks and .. segments cannot escape the sandbox.
func (s *Sandbox) Resolve(path string) (string, error) {
	resolved, err := canonicalize(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	if !s.allows(resolved) {
		return "", fmt.Errorf("%w: %s", ErrAccessDenied, path)
	}
	return resolved, nil
}

func (s *Sandbox) allows(resolved string) bool {
	if len(s.roots) == 0 {
		return true
	}
	for _, root := range s.roots {
		if resolved == root || strings.HasPrefix(resolved, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// canonicalize makes the path absolute and resolves symlinks. Nonexistent
// paths still canonicalize: symlinks are resolved on the deepest existing
// ancestor and the missing suffix is appended cleaned. This keeps the
// allow-list decision independent of whether the target exists, so a denied
// path never leaks existence information.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)

	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !unresolvable(err) {
		return "", err
	}

	// Walk up to the deepest existing ancestor, resolve that, and re-attach
	// the missing part.
	existing := abs
	var suffix []string
	for {
		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		suffix = append([]string{filepath.Base(existing)}, suffix...)
		existing = parent

		resolved, err := filepath.EvalSymlinks(existing)
		if err == nil {
			return filepath.Join(append([]string{resolved}, suffix...)...), nil
		}
		if !unresolvable(err) {
			return "", err
		}
	}
	return abs, nil
}

// unresolvable reports whether a resolution error means the path has no
// existing target: either a missing component or a file where a directory
// was expected. Both cases fall through to the ancestor walk so the
// allow-list check still runs before any existence or type error surfaces.
func unresolvable(err error) bool {
	return os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR)
}
