// ABOUTME: In-memory mock implementation of the Store interface for testing
// ABOUTME: Mutex-guarded maps mirroring the SQLite store's duplicate and not-found semantics

package store

import (
	"context"
	"sort"
	"sync"
)

// MockStore is an in-memory Store implementation for tests
type MockStore struct {
	mu    sync.Mutex
	users map[string]*User
	files map[string]*FileMetadata
}

// NewMockStore creates an empty in-memory store
func NewMockStore() *MockStore {
	return &MockStore{
		users: make(map[string]*User),
		files: make(map[string]*FileMetadata),
	}
}

func (m *MockStore) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == user.Username {
			return ErrDuplicateUsername
		}
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
	}

	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MockStore) GetUser(ctx context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *MockStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockStore) UpdateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return ErrUserNotFound
	}

	for id, existing := range m.users {
		if id == user.ID {
			continue
		}
		if existing.Username == user.Username {
			return ErrDuplicateUsername
		}
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
	}

	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MockStore) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MockStore) ListUsers(ctx context.Context, limit int) ([]*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 {
		limit = 100
	}

	users := make([]*User, 0, len(m.users))
	for _, user := range m.users {
		copied := *user
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})

	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (m *MockStore) CountUsers(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *MockStore) CreateFile(ctx context.Context, file *FileMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.files {
		if existing.Path == file.Path {
			return ErrDuplicatePath
		}
	}

	copied := *file
	m.files[file.ID] = &copied
	return nil
}

func (m *MockStore) GetFile(ctx context.Context, id string) (*FileMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[id]
	if !ok {
		return nil, ErrFileNotFound
	}
	copied := *file
	return &copied, nil
}

func (m *MockStore) ListFiles(ctx context.Context, ownerID string, limit int) ([]*FileMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 {
		limit = 100
	}

	files := make([]*FileMetadata, 0, len(m.files))
	for _, file := range m.files {
		if ownerID != "" && file.OwnerID != ownerID {
			continue
		}
		copied := *file
		files = append(files, &copied)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})

	if len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

func (m *MockStore) DeleteFile(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[id]; !ok {
		return ErrFileNotFound
	}
	delete(m.files, id)
	return nil
}

func (m *MockStore) FileStats(ctx context.Context) (*FileStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &FileStats{}
	for _, file := range m.files {
		stats.TotalFiles++
		stats.TotalBytes += file.Size
	}
	return stats, nil
}

func (m *MockStore) Close() error {
	return nil
}
