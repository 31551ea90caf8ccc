// Package migrations embeds the schema and applies it with golang-migrate.
// The SQL is portable between Postgres and SQLite.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"startup-funding-api/pkg/database"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var files embed.FS

// Up applies every pending migration. The store's *sql.DB stays open.
func Up(store *database.Store, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	source, err := iofs.New(files, "sql")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}

	var driver migratedb.Driver
	switch store.Dialect {
	case database.Postgres:
		driver, err = pgmigrate.WithInstance(store.Database, &pgmigrate.Config{})
	case database.SQLite:
		driver, err = sqlitemigrate.WithInstance(store.Database, &sqlitemigrate.Config{})
	default:
		return fmt.Errorf("%w: %q", database.ErrUnsupportedDialect, store.Dialect)
	}
	if err != nil {
		return fmt.Errorf("open migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, string(store.Dialect), driver)
	if err != nil {
		return fmt.Errorf("prepare migrations: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no change made by migration scripts")
			return nil
		}

		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	logger.Info("migrations applied", "version", version, "dirty", dirty)

	return nil
}
