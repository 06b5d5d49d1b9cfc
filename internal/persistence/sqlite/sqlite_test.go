package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/train-scheduler/internal/persistence"
	"github.com/example/train-scheduler/internal/timeofday"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	path := filepath.Join(t.TempDir(), "scheduler.db")
	storage, err := OpenWithConfig(TempFileTestConfig(path))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = storage.Close()
	})

	require.NoError(t, storage.Migrate(context.Background()))
	return storage
}

func TestStorage_Migrate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := newTestStorage(t)

	require.NoError(t, storage.Migrate(ctx), "second run should be a no-op")

	version, dirty, err := storage.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	station, err := storage.GetStation(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Fulton Street", station.Name)

	trains, err := storage.ListTrains(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(trains))
	for _, train := range trains {
		names = append(names, train.Name)
	}
	assert.Equal(t, []string{"ABCD", "ACEL", "LIRR", "PATH", "tomo"}, names)
}

func TestTrainRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := newTestStorage(t)

	train, err := storage.GetTrainByName(ctx, "tomo")
	require.NoError(t, err)
	assert.Equal(t, persistence.Train{ID: 1, Name: "tomo"}, train)

	_, err = storage.GetTrainByName(ctx, "TOMO")
	assert.ErrorIs(t, err, persistence.ErrNotFound)

	_, err = storage.GetTrainByName(ctx, "")
	assert.ErrorIs(t, err, persistence.ErrNotFound)

	_, err = storage.CreateTrain(ctx, "NEWT")
	assert.ErrorIs(t, err, persistence.ErrUnsupported)

	_, err = storage.GetStation(ctx, 99)
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestScheduleRepository_InsertAndList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := newTestStorage(t)
	at := timeofday.MustNew

	require.NoError(t, storage.InsertSchedules(ctx, 1, 1, []timeofday.TimeOfDay{at(22, 40), at(10, 30)}))

	schedules, err := storage.ListSchedulesByTrainName(ctx, "tomo")
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	assert.Equal(t, at(10, 30), schedules[0].ArrivalTime)
	assert.Equal(t, at(22, 40), schedules[1].ArrivalTime)
	assert.Equal(t, "tomo", schedules[0].Train.Name)
	assert.Equal(t, "Fulton Street", schedules[0].Station.Name)

	empty, err := storage.ListSchedulesByTrainName(ctx, "ABCD")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestScheduleRepository_InsertIsAtomic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := newTestStorage(t)
	at := timeofday.MustNew

	require.NoError(t, storage.InsertSchedules(ctx, 1, 1, []timeofday.TimeOfDay{at(10, 30)}))

	err := storage.InsertSchedules(ctx, 1, 1, []timeofday.TimeOfDay{at(8, 0), at(10, 30)})
	require.ErrorIs(t, err, persistence.ErrDuplicate)

	err = storage.InsertSchedules(ctx, 1, 42, []timeofday.TimeOfDay{at(9, 0)})
	require.ErrorIs(t, err, persistence.ErrForeignKeyViolation)

	schedules, err := storage.ListSchedulesByTrainName(ctx, "tomo")
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, at(10, 30), schedules[0].ArrivalTime)
}

func TestScheduleRepository_ListCollisions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := newTestStorage(t)
	at := timeofday.MustNew

	require.NoError(t, storage.InsertSchedules(ctx, 1, 1, []timeofday.TimeOfDay{at(10, 30), at(12, 0), at(18, 15)}))
	require.NoError(t, storage.InsertSchedules(ctx, 2, 1, []timeofday.TimeOfDay{at(10, 30), at(18, 15)}))
	require.NoError(t, storage.InsertSchedules(ctx, 3, 1, []timeofday.TimeOfDay{at(18, 15), at(19, 0)}))

	collisions, err := storage.ListCollisions(ctx)
	require.NoError(t, err)

	type row struct {
		train string
		at    timeofday.TimeOfDay
	}
	got := make([]row, 0, len(collisions))
	for _, schedule := range collisions {
		got = append(got, row{train: schedule.Train.Name, at: schedule.ArrivalTime})
	}
	assert.Equal(t, []row{
		{train: "ABCD", at: at(10, 30)},
		{train: "tomo", at: at(10, 30)},
		{train: "ABCD", at: at(18, 15)},
		{train: "LIRR", at: at(18, 15)},
		{train: "tomo", at: at(18, 15)},
	}, got)
}

func TestErrorMapper_MapError(t *testing.T) {
	t.Parallel()

	mapper := NewErrorMapper()

	assert.Nil(t, mapper.MapError(nil))
	assert.ErrorIs(t, mapper.MapError(errors.New("UNIQUE constraint failed: schedules.train_id")), persistence.ErrDuplicate)
	assert.ErrorIs(t, mapper.MapError(errors.New("FOREIGN KEY constraint failed")), persistence.ErrForeignKeyViolation)
	assert.ErrorIs(t, mapper.MapError(errors.New("CHECK constraint failed: length(name) = 4")), persistence.ErrConstraintViolation)
	assert.ErrorIs(t, mapper.MapError(errors.New("database is locked (5) (SQLITE_BUSY)")), errDatabaseLocked)

	other := errors.New("disk I/O error")
	assert.Same(t, other, mapper.MapError(other))
}

func TestRetryHelper_WithRetry(t *testing.T) {
	t.Parallel()

	helper := NewRetryHelper(RetryConfig{
		MaxRetries:    2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      2 * time.Millisecond,
		BackoffFactor: 2,
	})

	t.Run("retries locked database", func(t *testing.T) {
		attempts := 0
		err := helper.WithRetry(context.Background(), func() error {
			attempts++
			if attempts < 3 {
				return errors.New("database is locked")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("does not retry constraint errors", func(t *testing.T) {
		attempts := 0
		err := helper.WithRetry(context.Background(), func() error {
			attempts++
			return errors.New("UNIQUE constraint failed")
		})
		require.ErrorIs(t, err, persistence.ErrDuplicate)
		assert.Equal(t, 1, attempts)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		attempts := 0
		err := helper.WithRetry(context.Background(), func() error {
			attempts++
			return errors.New("database is locked")
		})
		require.ErrorIs(t, err, errDatabaseLocked)
		assert.Equal(t, 3, attempts)
	})
}

func TestConfig(t *testing.T) {
	t.Parallel()

	assert.NoError(t, DefaultConfig("scheduler.db").Validate())
	assert.Error(t, Config{}.Validate())
	assert.Error(t, Config{DSN: "x.db", JournalMode: "SIDEWAYS"}.Validate())

	dsn := DefaultConfig("scheduler.db").connectionString()
	assert.Contains(t, dsn, "file:scheduler.db?")
	assert.Contains(t, dsn, "foreign_keys%281%29")
	assert.Contains(t, dsn, "journal_mode%28WAL%29")

	withQuery := Config{DSN: "file:x.db?mode=rwc"}.connectionString()
	assert.Contains(t, withQuery, "file:x.db?mode=rwc&_pragma=")
}
