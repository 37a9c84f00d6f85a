package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aussiebroadwan/hdbdash/internal/dash/store"
	"github.com/aussiebroadwan/hdbdash/internal/dash/store/drivers/diskv"
	"github.com/aussiebroadwan/hdbdash/internal/dash/store/drivers/redis"
	"github.com/aussiebroadwan/hdbdash/internal/dash/store/drivers/sqlite"
)

// OpenStore opens the configured storage driver, wrapping it in a Sealed
// store when a passphrase is set.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	s, err := openDriver(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}

	if cfg.Storage.Passphrase == "" {
		return s, nil
	}

	sealed, err := store.NewSealed(ctx, s, cfg.Storage.Passphrase)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to unseal storage: %w", err)
	}
	return sealed, nil
}

func openDriver(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.Storage.Driver {
	case DriverMemory:
		return store.NewMemory(), nil

	case DriverRedis:
		if cfg.Storage.RedisURL != "" {
			return redis.NewStoreFromURL(ctx, cfg.Storage.RedisURL, cfg.Storage.RedisPrefix)
		}
		return redis.NewStore(ctx, redis.Options{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
			Prefix:   cfg.Storage.RedisPrefix,
		})

	case DriverSQLite:
		path, err := cfg.StoragePath()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, err
		}

		db, err := sqlite.NewStore(path)
		if err != nil {
			return nil, err
		}
		if _, err := db.ApplyMigrations(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		return db, nil

	case DriverFile:
		path, err := cfg.StoragePath()
		if err != nil {
			return nil, err
		}
		return diskv.NewStore(path)

	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Storage.Driver)
	}
}
