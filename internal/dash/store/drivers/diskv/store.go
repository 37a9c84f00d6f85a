package diskv

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"

	"github.com/aussiebroadwan/hdbdash/internal/dash/store"
)

const cacheSizeMaxBytes = 64 * 1024

// Store keeps one file per key under a directory, readable only by the
// current user.
type Store struct {
	dv  *diskv.Diskv
	dir string
}

var _ store.Store = (*Store)(nil)

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	// All files live directly in dir.
	flatTransform := func(string) []string { return []string{} }

	dv := diskv.New(diskv.Options{
		BasePath:     dir,
		TempDir:      filepath.Join(dir, ".tmp"),
		Transform:    flatTransform,
		CacheSizeMax: cacheSizeMaxBytes,
		PathPerm:     0o700,
		FilePerm:     0o600,
	})

	return &Store{dv: dv, dir: dir}, nil
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	b, err := s.dv.Read(key)
	if err != nil {
		return "", mapNotFound(err)
	}
	return string(b), nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	return s.dv.Write(key, []byte(value))
}

func (s *Store) Delete(_ context.Context, key string) error {
	if err := s.dv.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Ping checks the directory is still there.
func (s *Store) Ping(context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

func (s *Store) Close() error { return nil }

func mapNotFound(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return store.ErrNotFound
	}
	return err
}
