package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"campus-events/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Options defines configuration options for migration
type Options struct {
	// Dir holds the numbered *.up.sql / *.down.sql files
	Dir string
	// Seed also applies migrations numbered at or above SeedFrom (demo content)
	Seed     bool
	SeedFrom uint
}

// DefaultOptions returns the default migration options
func DefaultOptions() Options {
	return Options{
		Dir:      "./migrations",
		Seed:     false,
		SeedFrom: 100,
	}
}

// Runner applies golang-migrate migrations against the service database.
type Runner struct {
	sqlDB    *sql.DB
	options  Options
	log      *logger.Logger
	migrator *migrate.Migrate
}

func NewRunner(sqlDB *sql.DB, opts Options, log *logger.Logger) *Runner {
	return &Runner{
		sqlDB:   sqlDB,
		options: opts,
		log:     log,
	}
}

// Initialize prepares the migration system
func (r *Runner) Initialize() error {
	driver, err := postgres.WithInstance(r.sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres migration driver: %w", err)
	}

	if _, err := os.Stat(r.options.Dir); os.IsNotExist(err) {
		return fmt.Errorf("migrations directory does not exist: %s", r.options.Dir)
	}

	migrator, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", r.options.Dir),
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	r.migrator = migrator
	return nil
}

func (r *Runner) ensure() error {
	if r.migrator != nil {
		return nil
	}
	return r.Initialize()
}

// Run applies schema migrations, and seed migrations when enabled. A dirty
// database is forced back to its recorded version before continuing.
func (r *Runner) Run() error {
	if err := r.ensure(); err != nil {
		return err
	}

	version, dirty, err := r.migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		r.log.Warn("MIGRATE", fmt.Sprintf("Detected dirty migration at version %d, forcing", version))
		if err := r.migrator.Force(int(version)); err != nil {
			return fmt.Errorf("failed to fix dirty migration: %w", err)
		}
	}

	if r.options.Seed {
		r.log.Info("MIGRATE", "Running all migrations including seed data")
		if err := r.migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	} else {
		r.log.Info("MIGRATE", "Running schema migrations only")
		if err := r.upTo(r.options.SeedFrom - 1); err != nil {
			return err
		}
	}

	version, _, err = r.migrator.Version()
	if err == nil {
		r.log.Info("MIGRATE", fmt.Sprintf("Current schema version: %d", version))
	} else if !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	return nil
}

// upTo steps forward one migration at a time until the next one would pass limit.
func (r *Runner) upTo(limit uint) error {
	for {
		version, _, err := r.migrator.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("failed to get migration version: %w", err)
		}
		if err == nil && version >= limit {
			return nil
		}

		if err := r.migrator.Steps(1); err != nil {
			if errors.Is(err, migrate.ErrNoChange) || errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("failed to run schema migration: %w", err)
		}

		next, _, err := r.migrator.Version()
		if err == nil && next > limit {
			// stepped into seed territory, undo it
			if err := r.migrator.Steps(-1); err != nil {
				return fmt.Errorf("failed to roll back seed migration %d: %w", next, err)
			}
			return nil
		}
	}
}

// MigrateUp runs all pending migrations
func (r *Runner) MigrateUp() error {
	if err := r.ensure(); err != nil {
		return err
	}
	if err := r.migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateDown rolls back all migrations
func (r *Runner) MigrateDown() error {
	if err := r.ensure(); err != nil {
		return err
	}
	if err := r.migrator.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}

// MigrateTo migrates up or down to a specific version
func (r *Runner) MigrateTo(version uint) error {
	if err := r.ensure(); err != nil {
		return err
	}
	if err := r.migrator.Migrate(version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration to version %d failed: %w", version, err)
	}
	return nil
}

// Version reports the applied version and dirty flag; 0 when nothing ran yet.
func (r *Runner) Version() (uint, bool, error) {
	if err := r.ensure(); err != nil {
		return 0, false, err
	}
	version, dirty, err := r.migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Close frees resources associated with the migrator. The shared *sql.DB is
// closed by the caller.
func (r *Runner) Close() error {
	if r.migrator != nil {
		sourceErr, _ := r.migrator.Close()
		if sourceErr != nil {
			return fmt.Errorf("error closing migrator source: %w", sourceErr)
		}
	}
	return nil
}
