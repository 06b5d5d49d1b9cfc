// Package postgres implements the persistence repositories on PostgreSQL
// through a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/train-scheduler/internal/persistence"
	"github.com/example/train-scheduler/internal/timeofday"
)

// PostgreSQL SQLSTATE codes mapped to persistence sentinels.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
)

// Storage implements the train, station and schedule repositories.
type Storage struct {
	db *pgxpool.Pool
}

// Open creates a connection pool for dsn and verifies connectivity.
func Open(ctx context.Context, dsn string) (*Storage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot ping database: %w", err)
	}
	return NewStorage(pool), nil
}

// NewStorage wraps an existing pool.
func NewStorage(db *pgxpool.Pool) *Storage {
	return &Storage{db: db}
}

// Close releases the pool.
func (s *Storage) Close() error {
	s.db.Close()
	return nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return persistence.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %w", persistence.ErrDuplicate, err)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %w", persistence.ErrForeignKeyViolation, err)
		case codeCheckViolation, codeNotNullViolation:
			return fmt.Errorf("%w: %w", persistence.ErrConstraintViolation, err)
		}
	}
	return err
}

// CreateTrain is not supported; the roster is provisioned by migrations.
func (s *Storage) CreateTrain(context.Context, string) (persistence.Train, error) {
	return persistence.Train{}, persistence.ErrUnsupported
}

// GetTrainByName retrieves a train by its exact name.
func (s *Storage) GetTrainByName(ctx context.Context, name string) (persistence.Train, error) {
	var train persistence.Train
	err := s.db.QueryRow(ctx, `SELECT id, name FROM trains WHERE name = $1 LIMIT 1`, name).
		Scan(&train.ID, &train.Name)
	if err != nil {
		return persistence.Train{}, mapError(err)
	}
	return train, nil
}

// ListTrains returns the roster ordered by name.
func (s *Storage) ListTrains(ctx context.Context) ([]persistence.Train, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name FROM trains ORDER BY name COLLATE "C", id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	trains := make([]persistence.Train, 0)
	for rows.Next() {
		var train persistence.Train
		if err := rows.Scan(&train.ID, &train.Name); err != nil {
			return nil, err
		}
		trains = append(trains, train)
	}
	return trains, mapError(rows.Err())
}

// GetStation retrieves a station by id.
func (s *Storage) GetStation(ctx context.Context, id int64) (persistence.Station, error) {
	var station persistence.Station
	err := s.db.QueryRow(ctx, `SELECT id, name FROM stations WHERE id = $1`, id).
		Scan(&station.ID, &station.Name)
	if err != nil {
		return persistence.Station{}, mapError(err)
	}
	return station, nil
}

// ListStations returns all stations ordered by id.
func (s *Storage) ListStations(ctx context.Context) ([]persistence.Station, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name FROM stations ORDER BY id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	stations := make([]persistence.Station, 0)
	for rows.Next() {
		var station persistence.Station
		if err := rows.Scan(&station.ID, &station.Name); err != nil {
			return nil, err
		}
		stations = append(stations, station)
	}
	return stations, mapError(rows.Err())
}

// InsertSchedules inserts one row per arrival time in a single transaction.
func (s *Storage) InsertSchedules(ctx context.Context, trainID, stationID int64, times []timeofday.TimeOfDay) error {
	if len(times) == 0 {
		return nil
	}

	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, at := range times {
			batch.Queue(
				`INSERT INTO schedules (train_id, station_id, arrival_time) VALUES ($1, $2, $3::time)`,
				trainID, stationID, at.Canonical(),
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	return mapError(err)
}

const scheduleSelect = `
	SELECT s.id, t.id, t.name, st.id, st.name, to_char(s.arrival_time, 'HH24:MI:SS')
	FROM schedules s
	JOIN trains t ON t.id = s.train_id
	JOIN stations st ON st.id = s.station_id
`

// ListSchedulesByTrainName returns a train's arrivals ordered by arrival time.
func (s *Storage) ListSchedulesByTrainName(ctx context.Context, name string) ([]persistence.Schedule, error) {
	return s.list(ctx, scheduleSelect+`
		WHERE t.name = $1
		ORDER BY s.arrival_time, st.id, s.id
	`, name)
}

// ListCollisions returns arrivals whose station and time are shared by at
// least two distinct trains, ordered by arrival time then train name.
func (s *Storage) ListCollisions(ctx context.Context) ([]persistence.Schedule, error) {
	return s.list(ctx, scheduleSelect+`
		JOIN (
			SELECT station_id, arrival_time
			FROM schedules
			GROUP BY station_id, arrival_time
			HAVING COUNT(DISTINCT train_id) > 1
		) c ON c.station_id = s.station_id AND c.arrival_time = s.arrival_time
		ORDER BY s.arrival_time, t.name COLLATE "C", t.id
	`)
}

func (s *Storage) list(ctx context.Context, query string, args ...any) ([]persistence.Schedule, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	schedules := make([]persistence.Schedule, 0)
	for rows.Next() {
		var (
			schedule persistence.Schedule
			arrival  string
		)
		if err := rows.Scan(
			&schedule.ID,
			&schedule.Train.ID,
			&schedule.Train.Name,
			&schedule.Station.ID,
			&schedule.Station.Name,
			&arrival,
		); err != nil {
			return nil, err
		}
		if schedule.ArrivalTime, err = timeofday.ParseCanonical(arrival); err != nil {
			return nil, fmt.Errorf("unexpected arrival_time %q: %w", arrival, err)
		}
		schedules = append(schedules, schedule)
	}
	return schedules, mapError(rows.Err())
}
