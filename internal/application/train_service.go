package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// TrainService exposes read-only access to the train roster.
type TrainService struct {
	trains TrainDirectory
	logger *slog.Logger
}

// NewTrainService constructs a train service with the provided directory.
func NewTrainService(trains TrainDirectory) *TrainService {
	return NewTrainServiceWithLogger(trains, nil)
}

// NewTrainServiceWithLogger constructs a train service with a specified logger.
func NewTrainServiceWithLogger(trains TrainDirectory, logger *slog.Logger) *TrainService {
	return &TrainService{trains: trains, logger: defaultLogger(logger)}
}

func (s *TrainService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TrainService", operation, attrs...)
}

// ListTrains returns every train known to the directory.
func (s *TrainService) ListTrains(ctx context.Context) (trains []Train, err error) {
	if s == nil {
		err = fmt.Errorf("TrainService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ListTrains")
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to list trains", err)
			return
		}
		logger.DebugContext(ctx, "trains listed", "count", len(trains))
	}()

	if s.trains == nil {
		return []Train{}, nil
	}

	trains, err = s.trains.ListTrains(ctx)
	if err != nil {
		err = fmt.Errorf("list trains: %w", err)
		return nil, err
	}
	if trains == nil {
		trains = []Train{}
	}
	return trains, nil
}

// GetTrain resolves a single train by identifier.
func (s *TrainService) GetTrain(ctx context.Context, trainIdentifier string) (train Train, err error) {
	if s == nil {
		err = fmt.Errorf("TrainService is nil")
		return
	}

	name := strings.TrimSpace(trainIdentifier)
	logger := s.loggerWith(ctx, "GetTrain", "train_name", name)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to get train", err)
		}
	}()

	if vErr := validateTrainIdentifier(name); vErr != nil {
		err = vErr
		return
	}
	if s.trains == nil {
		err = fmt.Errorf("%w %q", ErrTrainNotFound, name)
		return
	}

	train, err = s.trains.ResolveTrain(ctx, name)
	if err != nil {
		err = mapTrainDirectoryError(name, err)
		return Train{}, err
	}
	return train, nil
}
