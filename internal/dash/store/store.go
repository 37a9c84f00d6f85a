package store

import (
	"context"

	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk"
)

// ErrNotFound is returned by Get for a missing key. Drivers return it
// unwrapped so resalesdk recognises an absent token.
var ErrNotFound = resalesdk.ErrNotFound

// Store is the persistent key-value storage behind the dashboard session.
// Concrete drivers (file, sqlite, redis) implement this.
type Store interface {
	resalesdk.Storage

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}

// Memory adapts resalesdk.MemoryStorage to Store for runs that should not
// persist anything.
type Memory struct {
	*resalesdk.MemoryStorage
}

func NewMemory() *Memory {
	return &Memory{MemoryStorage: resalesdk.NewMemoryStorage()}
}

func (*Memory) Ping(context.Context) error { return nil }

func (*Memory) Close() error { return nil }
