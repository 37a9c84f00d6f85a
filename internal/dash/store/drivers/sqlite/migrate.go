package sqlite

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/aussiebroadwan/hdbdash/internal/dash/store/drivers/sqlite/migrations"
)

const migrationsTable = "session_schema_migrations"

// ApplyMigrations runs the embedded migrations that the database has not
// seen yet and reports the schema version it ends on.
func (s *Store) ApplyMigrations() (uint, error) {
	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return 0, fmt.Errorf("open embedded migrations: %w", err)
	}

	target, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return 0, fmt.Errorf("prepare %s: %w", migrationsTable, err)
	}

	m, err := migrate.NewWithInstance("embedded", src, "sqlite", target)
	if err != nil {
		return 0, err
	}

	switch err := m.Up(); {
	case err == nil, errors.Is(err, migrate.ErrNoChange):
	default:
		return 0, fmt.Errorf("migrate session schema: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, err
	}
	if dirty {
		return version, fmt.Errorf("session schema version %d is dirty", version)
	}
	return version, nil
}
