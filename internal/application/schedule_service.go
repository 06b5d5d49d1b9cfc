package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/example/train-scheduler/internal/persistence"
	"github.com/example/train-scheduler/internal/scheduler"
	"github.com/example/train-scheduler/internal/timeofday"
)

// DefaultStationID identifies the station arrivals are recorded against when
// no other station is configured.
const DefaultStationID int64 = 1

// TrainDirectory resolves train identifiers.
type TrainDirectory interface {
	// ResolveTrain returns ErrNotFound (or persistence.ErrNotFound) when no
	// train carries name.
	ResolveTrain(ctx context.Context, name string) (Train, error)
	ListTrains(ctx context.Context) ([]Train, error)
}

// ScheduleStore captures the persistence interactions needed by the service.
type ScheduleStore interface {
	// InsertSchedules stores every time or none of them.
	InsertSchedules(ctx context.Context, trainID, stationID int64, times []timeofday.TimeOfDay) error
	// FindByTrainName returns entries ordered ascending by arrival time.
	FindByTrainName(ctx context.Context, name string) ([]ScheduleEntry, error)
	// FindCollisions returns entries whose station and arrival time are shared
	// by at least two distinct trains, ordered ascending by arrival time.
	FindCollisions(ctx context.Context) ([]ScheduleEntry, error)
}

// ScheduleService validates and records train arrivals and answers schedule queries.
type ScheduleService struct {
	trains    TrainDirectory
	schedules ScheduleStore
	stationID int64
	now       func() time.Time
	logger    *slog.Logger
}

// NewScheduleService wires dependencies for schedule operations.
func NewScheduleService(trains TrainDirectory, schedules ScheduleStore, stationID int64, now func() time.Time) *ScheduleService {
	return NewScheduleServiceWithLogger(trains, schedules, stationID, now, nil)
}

// NewScheduleServiceWithLogger wires dependencies with a specified logger.
func NewScheduleServiceWithLogger(trains TrainDirectory, schedules ScheduleStore, stationID int64, now func() time.Time, logger *slog.Logger) *ScheduleService {
	if stationID <= 0 {
		stationID = DefaultStationID
	}
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{
		trains:    trains,
		schedules: schedules,
		stationID: stationID,
		now:       now,
		logger:    defaultLogger(logger),
	}
}

func (s *ScheduleService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ScheduleService", operation, attrs...)
}

// AddSchedule records one arrival per entry of arrivalTimes for the named
// train. Every time is validated before anything is written, so a failure
// leaves the store untouched.
func (s *ScheduleService) AddSchedule(ctx context.Context, trainIdentifier string, arrivalTimes []string) (err error) {
	if s == nil {
		return fmt.Errorf("ScheduleService is nil")
	}

	name := strings.TrimSpace(trainIdentifier)
	logger := s.loggerWith(ctx, "AddSchedule",
		"train_name", name,
		"arrival_count", len(arrivalTimes),
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to add schedule", err)
			return
		}
		logger.InfoContext(ctx, "schedule added")
	}()

	train, err := s.resolveTrain(ctx, name)
	if err != nil {
		return err
	}

	if len(arrivalTimes) == 0 {
		return newValidationError("arrival_times", "at least one arrival time is required", ErrEmptyInput)
	}

	existing, err := s.schedules.FindByTrainName(ctx, train.Name)
	if err != nil {
		return fmt.Errorf("load schedule for train %q: %w", train.Name, err)
	}
	taken := make(map[timeofday.TimeOfDay]struct{}, len(existing)+len(arrivalTimes))
	for _, entry := range existing {
		if entry.Station.ID == s.stationID {
			taken[entry.ArrivalTime] = struct{}{}
		}
	}

	times := make([]timeofday.TimeOfDay, 0, len(arrivalTimes))
	for i, raw := range arrivalTimes {
		at, perr := timeofday.Parse(raw)
		if perr != nil {
			field := fmt.Sprintf("arrival_times[%d]", i)
			return newValidationError(field, arrivalTimeMessage(perr), perr)
		}
		if _, dup := taken[at]; dup {
			return &DuplicateScheduleError{Train: train.Name, ArrivalTime: at}
		}
		taken[at] = struct{}{}
		times = append(times, at)
	}

	if err := s.schedules.InsertSchedules(ctx, train.ID, s.stationID, times); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return fmt.Errorf("%w for train %q: %w", ErrDuplicateSchedule, train.Name, err)
		}
		return fmt.Errorf("insert schedule for train %q: %w", train.Name, err)
	}
	return nil
}

// GetSchedule returns the named train's arrivals, starting with the next one
// due today and wrapping past arrivals to the end.
func (s *ScheduleService) GetSchedule(ctx context.Context, trainIdentifier string) (entries []ScheduleEntry, err error) {
	if s == nil {
		return nil, fmt.Errorf("ScheduleService is nil")
	}

	name := strings.TrimSpace(trainIdentifier)
	logger := s.loggerWith(ctx, "GetSchedule", "train_name", name)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to get schedule", err)
			return
		}
		logger.DebugContext(ctx, "schedule retrieved", "count", len(entries))
	}()

	train, err := s.resolveTrain(ctx, name)
	if err != nil {
		return nil, err
	}

	stored, err := s.schedules.FindByTrainName(ctx, train.Name)
	if err != nil {
		return nil, fmt.Errorf("load schedule for train %q: %w", train.Name, err)
	}
	return scheduler.Wrap(stored, entryArrival, s.now()), nil
}

// GetNextSchedule returns the arrivals at which two or more distinct trains
// are due at the same station at the same time, starting with the next
// such moment today.
func (s *ScheduleService) GetNextSchedule(ctx context.Context) (entries []ScheduleEntry, err error) {
	if s == nil {
		return nil, fmt.Errorf("ScheduleService is nil")
	}

	logger := s.loggerWith(ctx, "GetNextSchedule")
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to get next schedule", err)
			return
		}
		logger.DebugContext(ctx, "collisions retrieved", "count", len(entries))
	}()

	stored, err := s.schedules.FindCollisions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load collisions: %w", err)
	}
	return scheduler.Wrap(stored, entryArrival, s.now()), nil
}

func (s *ScheduleService) resolveTrain(ctx context.Context, name string) (Train, error) {
	if err := validateTrainIdentifier(name); err != nil {
		return Train{}, err
	}
	train, err := s.trains.ResolveTrain(ctx, name)
	if err != nil {
		return Train{}, mapTrainDirectoryError(name, err)
	}
	return train, nil
}

func validateTrainIdentifier(name string) *ValidationError {
	if utf8.RuneCountInString(name) != TrainIdentifierLength {
		return newValidationError("train_name",
			fmt.Sprintf("train name must be exactly %d characters", TrainIdentifierLength),
			ErrInvalidIdentifier)
	}
	return nil
}

func mapTrainDirectoryError(name string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return fmt.Errorf("%w %q", ErrTrainNotFound, name)
	}
	return fmt.Errorf("resolve train %q: %w", name, err)
}

func arrivalTimeMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidHour):
		return "hour must be between 00 and 23"
	case errors.Is(err, ErrInvalidMinute):
		return "minute must be between 00 and 59"
	default:
		return "arrival time must be four digits in HHMM form"
	}
}

// logFailure logs caller mistakes at warn level and everything else at error.
func logFailure(ctx context.Context, logger *slog.Logger, msg string, err error) {
	kind := ErrorKind(err)
	if kind == "unexpected" || kind == "canceled" {
		logger.ErrorContext(ctx, msg, "error", err, "error_kind", kind)
		return
	}
	logger.WarnContext(ctx, msg, "error", err, "error_kind", kind)
}
