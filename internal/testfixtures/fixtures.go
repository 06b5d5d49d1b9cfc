package testfixtures

import (
	"time"

	"github.com/example/train-scheduler/internal/application"
	"github.com/example/train-scheduler/internal/persistence"
	"github.com/example/train-scheduler/internal/timeofday"
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// At returns the instant hour:minute on the reference day.
func At(hour, minute int) time.Time {
	return timeofday.MustNew(hour, minute).On(referenceTime)
}

// DefaultStation mirrors the station seeded by the storage migrations.
var DefaultStation = StationFixture{ID: 1, Name: "Fulton Street"}

// SeededTrains mirrors the roster seeded by the storage migrations.
var SeededTrains = []TrainFixture{
	{ID: 1, Name: "tomo"},
	{ID: 2, Name: "ABCD"},
	{ID: 3, Name: "LIRR"},
	{ID: 4, Name: "PATH"},
	{ID: 5, Name: "ACEL"},
}

// SeededTrain returns the seeded train called name. It panics for unknown names.
func SeededTrain(name string) TrainFixture {
	for _, train := range SeededTrains {
		if train.Name == name {
			return train
		}
	}
	panic("testfixtures: no seeded train " + name)
}

// ----------------------------- Train fixtures ----------------------------

// TrainFixture is a deterministic train record.
type TrainFixture struct {
	ID   int64
	Name string
}

// TrainOption configures the generated train fixture.
type TrainOption func(*TrainFixture)

// NewTrainFixture returns a train with a generated four character name.
func NewTrainFixture(opts ...TrainOption) TrainFixture {
	id, name := trainNames.Next()
	fixture := TrainFixture{ID: 100 + id, Name: name}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithTrainID overrides the generated train ID.
func WithTrainID(id int64) TrainOption {
	return func(f *TrainFixture) {
		f.ID = id
	}
}

// WithTrainName overrides the generated train name.
func WithTrainName(name string) TrainOption {
	return func(f *TrainFixture) {
		f.Name = name
	}
}

// Application returns the fixture as an application.Train value.
func (f TrainFixture) Application() application.Train {
	return application.Train{ID: f.ID, Name: f.Name}
}

// Persistence returns the fixture as a persistence.Train value.
func (f TrainFixture) Persistence() persistence.Train {
	return persistence.Train{ID: f.ID, Name: f.Name}
}

// ---------------------------- Station fixtures ---------------------------

// StationFixture is a deterministic station record.
type StationFixture struct {
	ID   int64
	Name string
}

// Application returns the fixture as an application.Station value.
func (f StationFixture) Application() application.Station {
	return application.Station{ID: f.ID, Name: f.Name}
}

// Persistence returns the fixture as a persistence.Station value.
func (f StationFixture) Persistence() persistence.Station {
	return persistence.Station{ID: f.ID, Name: f.Name}
}

// ----------------------------- Entry fixtures ----------------------------

// EntryFixture is one recurring arrival of a train.
type EntryFixture struct {
	Train       TrainFixture
	Station     StationFixture
	ArrivalTime timeofday.TimeOfDay
}

// EntryOption configures the generated entry fixture.
type EntryOption func(*EntryFixture)

// NewEntryFixture returns an arrival of train at hour:minute at the default station.
func NewEntryFixture(train TrainFixture, hour, minute int, opts ...EntryOption) EntryFixture {
	fixture := EntryFixture{
		Train:       train,
		Station:     DefaultStation,
		ArrivalTime: timeofday.MustNew(hour, minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEntryStation overrides the station of the entry.
func WithEntryStation(station StationFixture) EntryOption {
	return func(f *EntryFixture) {
		f.Station = station
	}
}

// Application returns the fixture as an application.ScheduleEntry value.
func (f EntryFixture) Application() application.ScheduleEntry {
	return application.ScheduleEntry{
		Train:       f.Train.Application(),
		Station:     f.Station.Application(),
		ArrivalTime: f.ArrivalTime,
	}
}

// Persistence returns the fixture as a persistence.Schedule value.
func (f EntryFixture) Persistence() persistence.Schedule {
	return persistence.Schedule{
		Train:       f.Train.Persistence(),
		Station:     f.Station.Persistence(),
		ArrivalTime: f.ArrivalTime,
	}
}

// Entries converts fixtures to application entries, preserving order.
func Entries(fixtures ...EntryFixture) []application.ScheduleEntry {
	out := make([]application.ScheduleEntry, 0, len(fixtures))
	for _, f := range fixtures {
		out = append(out, f.Application())
	}
	return out
}
