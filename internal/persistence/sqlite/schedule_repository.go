package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/train-scheduler/internal/persistence"
	"github.com/example/train-scheduler/internal/timeofday"
)

const scheduleColumns = `
	s.id, t.id, t.name, st.id, st.name, s.arrival_time
`

// ScheduleRepository implements persistence.ScheduleRepository using SQLite
type ScheduleRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewScheduleRepository creates a new SQLite schedule repository
func NewScheduleRepository(pool *ConnectionPool) *ScheduleRepository {
	return &ScheduleRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// InsertSchedules inserts one row per arrival time inside a single
// transaction. Any failure rolls back the whole batch.
func (r *ScheduleRepository) InsertSchedules(ctx context.Context, trainID, stationID int64, times []timeofday.TimeOfDay) error {
	if len(times) == 0 {
		return nil
	}

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			stmt, err := r.helper.PrepareTx(ctx, tx, `
				INSERT INTO schedules (train_id, station_id, arrival_time)
				VALUES (?, ?, ?)
			`)
			if err != nil {
				return r.mapper.MapError(err)
			}
			defer stmt.Close()

			for _, at := range times {
				if _, err := stmt.ExecContext(ctx, trainID, stationID, at.Canonical()); err != nil {
					return r.mapper.MapError(err)
				}
			}
			return nil
		})
	})
}

// ListSchedulesByTrainName returns a train's arrivals ordered by arrival time
func (r *ScheduleRepository) ListSchedulesByTrainName(ctx context.Context, name string) ([]persistence.Schedule, error) {
	query := `
		SELECT` + scheduleColumns + `
		FROM schedules s
		JOIN trains t ON t.id = s.train_id
		JOIN stations st ON st.id = s.station_id
		WHERE t.name = ?
		ORDER BY s.arrival_time, st.id, s.id
	`
	return r.list(ctx, query, name)
}

// ListCollisions returns every arrival whose station and time are shared by at
// least two distinct trains, ordered by arrival time then train name
func (r *ScheduleRepository) ListCollisions(ctx context.Context) ([]persistence.Schedule, error) {
	query := `
		SELECT` + scheduleColumns + `
		FROM schedules s
		JOIN (
			SELECT station_id, arrival_time
			FROM schedules
			GROUP BY station_id, arrival_time
			HAVING COUNT(DISTINCT train_id) > 1
		) c ON c.station_id = s.station_id AND c.arrival_time = s.arrival_time
		JOIN trains t ON t.id = s.train_id
		JOIN stations st ON st.id = s.station_id
		ORDER BY s.arrival_time, t.name, t.id
	`
	return r.list(ctx, query)
}

func (r *ScheduleRepository) list(ctx context.Context, query string, args ...any) ([]persistence.Schedule, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	schedules := make([]persistence.Schedule, 0)
	for rows.Next() {
		var schedule persistence.Schedule
		if err := rows.Scan(
			&schedule.ID,
			&schedule.Train.ID,
			&schedule.Train.Name,
			&schedule.Station.ID,
			&schedule.Station.Name,
			&schedule.ArrivalTime,
		); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return schedules, nil
}
