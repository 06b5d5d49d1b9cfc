// Package memory provides a process-local implementation of the persistence
// repositories. It is used by tests and by the service when configured with
// the memory store; contents are lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/example/train-scheduler/internal/persistence"
	"github.com/example/train-scheduler/internal/scheduler"
	"github.com/example/train-scheduler/internal/timeofday"
)

// Seed lists the stations and trains the storage starts with.
type Seed struct {
	Stations []persistence.Station
	Trains   []persistence.Train
}

// DefaultSeed mirrors the rows inserted by the SQL seed migration.
func DefaultSeed() Seed {
	return Seed{
		Stations: []persistence.Station{{ID: 1, Name: "Fulton Street"}},
		Trains: []persistence.Train{
			{ID: 1, Name: "tomo"},
			{ID: 2, Name: "ABCD"},
			{ID: 3, Name: "LIRR"},
			{ID: 4, Name: "PATH"},
			{ID: 5, Name: "ACEL"},
		},
	}
}

type scheduleKey struct {
	trainID   int64
	stationID int64
	at        timeofday.TimeOfDay
}

// Storage implements the train, station and schedule repositories in memory.
type Storage struct {
	mu        sync.RWMutex
	stations  map[int64]persistence.Station
	trains    map[int64]persistence.Train
	byName    map[string]int64
	schedules map[scheduleKey]int64
	nextID    int64
}

// Open returns a Storage populated with seed.
func Open(seed Seed) *Storage {
	s := &Storage{
		stations:  make(map[int64]persistence.Station, len(seed.Stations)),
		trains:    make(map[int64]persistence.Train, len(seed.Trains)),
		byName:    make(map[string]int64, len(seed.Trains)),
		schedules: make(map[scheduleKey]int64),
	}
	for _, station := range seed.Stations {
		s.stations[station.ID] = station
	}
	for _, train := range seed.Trains {
		s.trains[train.ID] = train
		s.byName[train.Name] = train.ID
	}
	return s
}

// Close is a no-op for the in-memory implementation.
func (s *Storage) Close() error {
	return nil
}

// Migrate is a no-op for the in-memory implementation.
func (s *Storage) Migrate(context.Context) error {
	return nil
}

// --- TrainRepository implementation ---

// CreateTrain is not supported.
func (s *Storage) CreateTrain(context.Context, string) (persistence.Train, error) {
	return persistence.Train{}, persistence.ErrUnsupported
}

// GetTrainByName retrieves a train by its exact name.
func (s *Storage) GetTrainByName(ctx context.Context, name string) (persistence.Train, error) {
	if err := ctx.Err(); err != nil {
		return persistence.Train{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[name]
	if !ok {
		return persistence.Train{}, persistence.ErrNotFound
	}
	return s.trains[id], nil
}

// ListTrains returns all trains ordered by name.
func (s *Storage) ListTrains(ctx context.Context) ([]persistence.Train, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	trains := make([]persistence.Train, 0, len(s.trains))
	for _, train := range s.trains {
		trains = append(trains, train)
	}
	sort.Slice(trains, func(i, j int) bool {
		if trains[i].Name == trains[j].Name {
			return trains[i].ID < trains[j].ID
		}
		return trains[i].Name < trains[j].Name
	})
	return trains, nil
}

// --- StationRepository implementation ---

// GetStation retrieves a station by id.
func (s *Storage) GetStation(ctx context.Context, id int64) (persistence.Station, error) {
	if err := ctx.Err(); err != nil {
		return persistence.Station{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	station, ok := s.stations[id]
	if !ok {
		return persistence.Station{}, persistence.ErrNotFound
	}
	return station, nil
}

// ListStations returns all stations ordered by id.
func (s *Storage) ListStations(ctx context.Context) ([]persistence.Station, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	stations := make([]persistence.Station, 0, len(s.stations))
	for _, station := range s.stations {
		stations = append(stations, station)
	}
	sort.Slice(stations, func(i, j int) bool { return stations[i].ID < stations[j].ID })
	return stations, nil
}

// --- ScheduleRepository implementation ---

// InsertSchedules stores every time or none of them.
func (s *Storage) InsertSchedules(ctx context.Context, trainID, stationID int64, times []timeofday.TimeOfDay) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trains[trainID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if _, ok := s.stations[stationID]; !ok {
		return persistence.ErrForeignKeyViolation
	}

	pending := make(map[scheduleKey]struct{}, len(times))
	for _, at := range times {
		key := scheduleKey{trainID: trainID, stationID: stationID, at: at}
		if _, exists := s.schedules[key]; exists {
			return persistence.ErrDuplicate
		}
		if _, exists := pending[key]; exists {
			return persistence.ErrDuplicate
		}
		pending[key] = struct{}{}
	}

	for _, at := range times {
		s.nextID++
		s.schedules[scheduleKey{trainID: trainID, stationID: stationID, at: at}] = s.nextID
	}
	return nil
}

// ListSchedulesByTrainName returns the train's arrivals ordered by arrival time.
func (s *Storage) ListSchedulesByTrainName(ctx context.Context, name string) ([]persistence.Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	trainID, ok := s.byName[name]
	if !ok {
		return []persistence.Schedule{}, nil
	}

	schedules := make([]persistence.Schedule, 0)
	for key, id := range s.schedules {
		if key.trainID != trainID {
			continue
		}
		schedules = append(schedules, s.scheduleLocked(id, key))
	}
	sortSchedules(schedules)
	return schedules, nil
}

// ListCollisions returns arrivals shared by at least two distinct trains.
func (s *Storage) ListCollisions(ctx context.Context) ([]persistence.Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	slots := make([]scheduler.Slot, 0, len(s.schedules))
	for key := range s.schedules {
		slots = append(slots, scheduler.Slot{
			TrainID:   key.trainID,
			TrainName: s.trains[key.trainID].Name,
			StationID: key.stationID,
			At:        key.at,
		})
	}

	collisions := scheduler.DetectCollisions(slots)
	schedules := make([]persistence.Schedule, 0, len(collisions))
	for _, slot := range collisions {
		key := scheduleKey{trainID: slot.TrainID, stationID: slot.StationID, at: slot.At}
		schedules = append(schedules, s.scheduleLocked(s.schedules[key], key))
	}
	return schedules, nil
}

func (s *Storage) scheduleLocked(id int64, key scheduleKey) persistence.Schedule {
	return persistence.Schedule{
		ID:          id,
		Train:       s.trains[key.trainID],
		Station:     s.stations[key.stationID],
		ArrivalTime: key.at,
	}
}

func sortSchedules(schedules []persistence.Schedule) {
	sort.Slice(schedules, func(i, j int) bool {
		a, b := schedules[i], schedules[j]
		if c := a.ArrivalTime.Compare(b.ArrivalTime); c != 0 {
			return c < 0
		}
		if a.Station.ID != b.Station.ID {
			return a.Station.ID < b.Station.ID
		}
		return a.ID < b.ID
	})
}
