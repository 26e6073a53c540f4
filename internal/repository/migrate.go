package repository

import (
	"errors"
	"fmt"

	"github.com/Rrens/talent-chat/internal/config"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

// Migrate applies every pending schema migration for the configured driver
func Migrate(cfg config.DatabaseConfig) error {
	return MigrateSteps(cfg, 0)
}

// MigrateSteps moves the schema n migrations forward, or back when n is
// negative. Zero applies everything pending. The memory driver has no schema.
func MigrateSteps(cfg config.DatabaseConfig, n int) error {
	if cfg.Driver == "memory" {
		return nil
	}

	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if _, dirty, err := m.Version(); err == nil && dirty {
		return errors.New("database schema is dirty; fix the failed migration and force its version")
	}

	if n == 0 {
		err = m.Up()
	} else {
		err = m.Steps(n)
	}
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Str("driver", cfg.Driver).Msg("Database migration: no changes")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, _ := m.Version()
	log.Info().Str("driver", cfg.Driver).Uint("version", version).Msg("Database migration: success")
	return nil
}

// MigrationVersion reports the applied schema version. A fresh database
// reports 0.
func MigrationVersion(cfg config.DatabaseConfig) (uint, bool, error) {
	if cfg.Driver == "memory" {
		return 0, false, nil
	}

	m, err := newMigrator(cfg)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func newMigrator(cfg config.DatabaseConfig) (*migrate.Migrate, error) {
	switch cfg.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	m, err := migrate.New(cfg.MigrationsSource(), cfg.MigrateURL())
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}
