package sqlite

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Storage bundles the SQLite train, station and schedule repositories over a
// single connection pool.
type Storage struct {
	*TrainRepository
	*StationRepository
	*ScheduleRepository

	pool *ConnectionPool
}

// Open connects to the database at dsn using DefaultConfig.
func Open(dsn string) (*Storage, error) {
	return OpenWithConfig(DefaultConfig(dsn))
}

// OpenWithConfig connects to SQLite using config.
func OpenWithConfig(config Config) (*Storage, error) {
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	return &Storage{
		TrainRepository:    NewTrainRepository(pool),
		StationRepository:  NewStationRepository(pool),
		ScheduleRepository: NewScheduleRepository(pool),
		pool:               pool,
	}, nil
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// Pool exposes the connection pool backing the storage.
func (s *Storage) Pool() *ConnectionPool {
	return s.pool
}

// Migrate applies all pending embedded migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("cannot open migration source: %w", err)
	}
	driver, err := sqlitemigrate.WithInstance(s.pool.DB(), &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("cannot create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("cannot create migrate: %w", err)
	}
	// m.Close is not called: it would close the shared *sql.DB.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("cannot migrate up: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied migration version.
func (s *Storage) SchemaVersion(ctx context.Context) (version uint, dirty bool, err error) {
	err = NewQueryHelper(s.pool).
		QueryRow(ctx, "SELECT version, dirty FROM schema_migrations LIMIT 1").
		Scan(&version, &dirty)
	if err != nil {
		return 0, false, NewErrorMapper().MapError(err)
	}
	return version, dirty, nil
}
