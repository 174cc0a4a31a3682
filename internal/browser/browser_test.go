// ABOUTME: Tests for directory listings, metadata, and sandboxed file reads
// ABOUTME: Covers entry ordering, error classes and their precedence

package browser

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func newTestBrowser(t *testing.T, roots ...string) *Browser {
	t.Helper()
	return New(newTestSandbox(t, roots...), nil)
}

func TestListDirectory(t *testing.T) {
	root := t.TempDir()
	// Mixed case to exercise case-insensitive ordering; the directory named
	// "A" must still sort before every file.
	if err := os.Mkdir(filepath.Join(root, "A"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{"b.txt", "a.txt"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("data"), 0644); err != nil {
			t.Fatalf("writing file: %v", err)
		}
	}

	b := newTestBrowser(t, root)
	listing, err := b.ListDirectory(context.Background(), root)
	if err != nil {
		t.Fatalf("ListDirectory failed: %v", err)
	}

	if listing.TotalItems != 3 {
		t.Fatalf("TotalItems = %d, want 3", listing.TotalItems)
	}
	wantOrder := []string{"A", "a.txt", "b.txt"}
	for i, want := range wantOrder {
		if listing.Items[i].Name != want {
			t.Errorf("Items[%d].Name = %q, want %q", i, listing.Items[i].Name, want)
		}
	}

	dir := listing.Items[0]
	if !dir.IsDirectory {
		t.Error("first item should be a directory")
	}
	if dir.Size != nil {
		t.Error("directory Size should be nil")
	}

	file := listing.Items[1]
	if file.IsDirectory {
		t.Error("a.txt should not be a directory")
	}
	if file.Size == nil || *file.Size != 4 {
		t.Errorf("file Size = %v, want 4", file.Size)
	}
	if len(file.Permissions) != 9 {
		t.Errorf("Permissions = %q, want 9 characters", file.Permissions)
	}
	if listing.Parent != filepath.Dir(listing.Path) {
		t.Errorf("Parent = %q, want %q", listing.Parent, filepath.Dir(listing.Path))
	}
}

func TestListDirectory_Errors(t *testing.T) {
	root := t.TempDir()
	filePath := filepath.Join(root, "file.txt")
	if err := os.WriteFile(filePath, []byte("data"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	b := newTestBrowser(t, root)
	ctx := context.Background()

	// Denied paths fail before existence is considered
	_, err := b.ListDirectory(ctx, "/etc")
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied, got %v", err)
	}

	_, err = b.ListDirectory(ctx, filepath.Join(root, "missing"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_, err = b.ListDirectory(ctx, filePath)
	if !errors.Is(err, ErrNotADirectory) {
		t.Errorf("expected ErrNotADirectory, got %v", err)
	}
}

func TestFileAsIntermediateComponent(t *testing.T) {
	root := t.TempDir()
	filePath := filepath.Join(root, "file.txt")
	if err := os.WriteFile(filePath, []byte("data"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	b := newTestBrowser(t, root)
	ctx := context.Background()

	// A path routed through a regular file names nothing: NotFound, the
	// same as a missing component
	through := filepath.Join(filePath, "child")
	if _, err := b.Describe(ctx, through); !errors.Is(err, ErrNotFound) {
		t.Errorf("Describe: expected ErrNotFound, got %v", err)
	}
	if _, err := b.ListDirectory(ctx, through); !errors.Is(err, ErrNotFound) {
		t.Errorf("ListDirectory: expected ErrNotFound, got %v", err)
	}
	if _, _, err := b.ReadFile(ctx, through); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadFile: expected ErrNotFound, got %v", err)
	}

	// Outside the sandbox the allow-list still decides first
	if _, err := b.Describe(ctx, "/etc/passwd/child"); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied, got %v", err)
	}
}

func TestDescribe(t *testing.T) {
	root := t.TempDir()
	filePath := filepath.Join(root, "notes.txt")
	if err := os.WriteFile(filePath, []byte("hello"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	b := newTestBrowser(t, root)
	ctx := context.Background()

	item, err := b.Describe(ctx, filePath)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if item.Name != "notes.txt" {
		t.Errorf("Name = %q, want notes.txt", item.Name)
	}
	if item.Size == nil || *item.Size != 5 {
		t.Errorf("Size = %v, want 5", item.Size)
	}
	if !item.IsReadable {
		t.Error("file should be readable")
	}

	dirItem, err := b.Describe(ctx, root)
	if err != nil {
		t.Fatalf("Describe dir failed: %v", err)
	}
	if !dirItem.IsDirectory || dirItem.Size != nil {
		t.Errorf("dir item = %+v, want directory with nil size", dirItem)
	}

	if _, err := b.Describe(ctx, filepath.Join(root, "missing")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReadFile(t *testing.T) {
	root := t.TempDir()
	filePath := filepath.Join(root, "data.bin")
	content := []byte("file contents here")
	if err := os.WriteFile(filePath, content, 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	b := newTestBrowser(t, root)
	ctx := context.Background()

	got, item, err := b.ReadFile(ctx, filePath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("content = %q, want %q", got, content)
	}
	if item.Name != "data.bin" {
		t.Errorf("Name = %q, want data.bin", item.Name)
	}

	if _, _, err := b.ReadFile(ctx, root); !errors.Is(err, ErrIsADirectory) {
		t.Errorf("expected ErrIsADirectory, got %v", err)
	}
	if _, _, err := b.ReadFile(ctx, filepath.Join(root, "missing")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := b.ReadFile(ctx, "/etc/passwd"); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied, got %v", err)
	}
}

func TestPermissionTriads(t *testing.T) {
	tests := []struct {
		mode fs.FileMode
		want string
	}{
		{0755, "rwxr-xr-x"},
		{0644, "rw-r--r--"},
		{0600, "rw-------"},
		{0000, "---------"},
		{0777, "rwxrwxrwx"},
	}

	for _, tt := range tests {
		if got := permissionTriads(tt.mode); got != tt.want {
			t.Errorf("permissionTriads(%o) = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestIsReadable_DeniedFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root reads everything regardless of mode bits")
	}

	root := t.TempDir()
	locked := filepath.Join(root, "locked.txt")
	if err := os.WriteFile(locked, []byte("data"), 0000); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	b := newTestBrowser(t, root)
	item, err := b.Describe(context.Background(), locked)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if item.IsReadable {
		t.Error("mode 0000 file should not be readable")
	}
}

func TestRoots(t *testing.T) {
	root := t.TempDir()
	b := newTestBrowser(t, root)

	roots := b.Roots()
	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}

	// Mutating the returned slice must not affect the sandbox
	roots[0] = "/elsewhere"
	if b.Roots()[0] == "/elsewhere" {
		t.Error("Roots() should return a copy")
	}
}
