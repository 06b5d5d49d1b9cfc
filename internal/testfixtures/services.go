package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/train-scheduler/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// a deterministic clock.
type ServiceFactory struct {
	Clock     *Clock
	StationID int64
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:     NewClock(time.Time{}),
		StationID: DefaultStation.ID,
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithStationID overrides the station arrivals are recorded against.
func WithStationID(id int64) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.StationID = id
	}
}

// ScheduleServiceDeps captures dependencies for constructing a schedule service.
type ScheduleServiceDeps struct {
	Trains    application.TrainDirectory
	Schedules application.ScheduleStore
	Now       func() time.Time
	Logger    *slog.Logger
}

// NewScheduleService builds a schedule service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewScheduleService(deps ScheduleServiceDeps) *application.ScheduleService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewScheduleServiceWithLogger(
		deps.Trains,
		deps.Schedules,
		f.StationID,
		now,
		deps.Logger,
	)
}

// TrainServiceDeps captures dependencies for constructing a train service.
type TrainServiceDeps struct {
	Trains application.TrainDirectory
	Logger *slog.Logger
}

// NewTrainService builds a train service using the supplied dependencies.
func (f *ServiceFactory) NewTrainService(deps TrainServiceDeps) *application.TrainService {
	return application.NewTrainServiceWithLogger(deps.Trains, deps.Logger)
}
