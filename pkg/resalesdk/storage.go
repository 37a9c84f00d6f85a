package resalesdk

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
)

// Keys the SDK reads and writes in Storage.
const (
	KeyAccessToken       = "access_token"
	KeyRefreshToken      = "refresh_token"
	KeyUsername          = "username"
	KeyRecentComparisons = "recentComparisons"
)

// ErrNotFound is returned by Storage.Get for a missing key.
var ErrNotFound = errors.New("resalesdk: key not found")

// Storage is the persistent key-value store holding credentials and the
// recent comparisons list. Implementations must be safe for concurrent
// use; individual Set and Delete calls are last-writer-wins.
type Storage interface {
	// Get returns ErrNotFound (possibly wrapped) when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete is a no-op for absent keys.
	Delete(ctx context.Context, key string) error
}

// MemoryStorage is a process-local Storage. The zero value is ready to use.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		m.data = make(map[string]string)
	}
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// Snapshot returns a copy of everything stored. Intended for tests.
func (m *MemoryStorage) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return maps.Clone(m.data)
}

// lookup reads key, mapping ErrNotFound to the empty string.
func lookup(ctx context.Context, s Storage, key string) (string, error) {
	v, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, nil
}

// deleteKeys attempts every key even if an earlier delete fails.
func deleteKeys(ctx context.Context, s Storage, keys ...string) error {
	var errs []error
	for _, k := range keys {
		if err := s.Delete(ctx, k); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}
