package sqlite

import (
	"context"
	"fmt"

	"github.com/example/train-scheduler/internal/persistence"
)

// StationRepository implements persistence.StationRepository using SQLite
type StationRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewStationRepository creates a new SQLite station repository
func NewStationRepository(pool *ConnectionPool) *StationRepository {
	return &StationRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// GetStation retrieves a station by ID
func (r *StationRepository) GetStation(ctx context.Context, id int64) (persistence.Station, error) {
	var station persistence.Station
	err := r.helper.QueryRow(ctx, `SELECT id, name FROM stations WHERE id = ?`, id).
		Scan(&station.ID, &station.Name)
	if err != nil {
		return persistence.Station{}, r.mapper.MapError(err)
	}
	return station, nil
}

// ListStations returns all stations ordered by ID
func (r *StationRepository) ListStations(ctx context.Context) ([]persistence.Station, error) {
	rows, err := r.helper.Query(ctx, `SELECT id, name FROM stations ORDER BY id`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	stations := make([]persistence.Station, 0)
	for rows.Next() {
		var station persistence.Station
		if err := rows.Scan(&station.ID, &station.Name); err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		stations = append(stations, station)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return stations, nil
}
