package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/hdbdash/internal/dash/store"
)

const DefaultPrefix = "hdbdash:"

type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key. Defaults to DefaultPrefix.
	Prefix string
}

// Store keeps session values as plain redis strings, so several machines
// can share one login.
type Store struct {
	rdb    *redis.Client
	prefix string
}

var _ store.Store = (*Store)(nil)

// NewStore connects and pings the server so a bad address fails at startup.
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	return &Store{rdb: rdb, prefix: opts.Prefix}, nil
}

// NewStoreFromURL accepts redis://[:password@]host:port/db.
func NewStoreFromURL(ctx context.Context, url, prefix string) (*Store, error) {
	parsed, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewStore(ctx, Options{
		Addr:     parsed.Addr,
		Password: parsed.Password,
		DB:       parsed.DB,
		Prefix:   prefix,
	})
}

func (s *Store) key(k string) string { return s.prefix + k }

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	val, err := s.rdb.Get(ctx, s.key(key)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", store.ErrNotFound
	case err != nil:
		return "", err
	default:
		return val, nil
	}
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, s.key(key), value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.key(key)).Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error { return s.rdb.Close() }
