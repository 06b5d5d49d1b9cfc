package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/train-scheduler/internal/persistence"
	"github.com/example/train-scheduler/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary, migrated
// SQLite database seeded with DefaultStation and SeededTrains.
type SQLiteHarness struct {
	Trains    persistence.TrainRepository
	Stations  persistence.StationRepository
	Schedules persistence.ScheduleRepository
	Storage   *sqlite.Storage

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "scheduler.db")

	storage, err := sqlite.OpenWithConfig(sqlite.TempFileTestConfig(path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Trains:    storage,
		Stations:  storage,
		Schedules: storage,
		Storage:   storage,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
