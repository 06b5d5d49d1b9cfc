package persistence

import (
	"context"

	"github.com/example/train-scheduler/internal/timeofday"
)

// TrainRepository exposes the read-only train roster.
type TrainRepository interface {
	// CreateTrain always fails with ErrUnsupported; trains are provisioned by migrations.
	CreateTrain(ctx context.Context, name string) (Train, error)
	GetTrainByName(ctx context.Context, name string) (Train, error)
	ListTrains(ctx context.Context) ([]Train, error)
}

// StationRepository exposes the station catalog.
type StationRepository interface {
	GetStation(ctx context.Context, id int64) (Station, error)
	ListStations(ctx context.Context) ([]Station, error)
}

// ScheduleRepository stores recurring arrivals.
type ScheduleRepository interface {
	// InsertSchedules stores one row per time, in order, atomically.
	InsertSchedules(ctx context.Context, trainID, stationID int64, times []timeofday.TimeOfDay) error
	// ListSchedulesByTrainName returns the train's arrivals ordered by arrival time.
	ListSchedulesByTrainName(ctx context.Context, name string) ([]Schedule, error)
	// ListCollisions returns arrivals whose station and time are shared by at
	// least two distinct trains, ordered by arrival time then train name.
	ListCollisions(ctx context.Context) ([]Schedule, error)
}
