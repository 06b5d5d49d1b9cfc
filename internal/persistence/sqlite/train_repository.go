package sqlite

import (
	"context"
	"fmt"

	"github.com/example/train-scheduler/internal/persistence"
)

// TrainRepository implements persistence.TrainRepository using SQLite
type TrainRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewTrainRepository creates a new SQLite train repository
func NewTrainRepository(pool *ConnectionPool) *TrainRepository {
	return &TrainRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateTrain is not supported; the roster is provisioned by migrations.
func (r *TrainRepository) CreateTrain(context.Context, string) (persistence.Train, error) {
	return persistence.Train{}, persistence.ErrUnsupported
}

// GetTrainByName retrieves a train by its exact name
func (r *TrainRepository) GetTrainByName(ctx context.Context, name string) (persistence.Train, error) {
	if name == "" {
		return persistence.Train{}, persistence.ErrNotFound
	}

	var train persistence.Train
	err := r.helper.QueryRow(ctx, `SELECT id, name FROM trains WHERE name = ? LIMIT 1`, name).
		Scan(&train.ID, &train.Name)
	if err != nil {
		return persistence.Train{}, r.mapper.MapError(err)
	}
	return train, nil
}

// ListTrains returns the roster ordered by name
func (r *TrainRepository) ListTrains(ctx context.Context) ([]persistence.Train, error) {
	rows, err := r.helper.Query(ctx, `SELECT id, name FROM trains ORDER BY name, id`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	trains := make([]persistence.Train, 0)
	for rows.Next() {
		var train persistence.Train
		if err := rows.Scan(&train.ID, &train.Name); err != nil {
			return nil, fmt.Errorf("failed to scan train: %w", err)
		}
		trains = append(trains, train)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return trains, nil
}
