// Package browser provides sandboxed read-only filesystem browsing.
//
// # Sandbox
//
// A Sandbox holds the allow-list of root directories. Every requested path
// is canonicalized (absolute, cleaned, symlinks resolved) before it is
// checked against the roots, so `..` segments and symlinks cannot escape.
// Paths that do not exist are still canonicalized by resolving their deepest
// existing ancestor, which keeps the access check ahead of the existence
// check: a denied path returns ErrAccessDenied whether or not it exists.
// An empty allow-list disables sandboxing.
//
// # Browsing
//
// Browser lists directories (directories first, then case-insensitive by
// name), describes single entries, and reads file contents. Entries that
// cannot be stat-ed are skipped rather than failing the listing. Each item
// carries a permission string in rwxr-xr-x form and a readability flag
// probed with access(2) against the server's real uid.
package browser
