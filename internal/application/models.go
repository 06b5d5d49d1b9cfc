package application

import "github.com/example/train-scheduler/internal/timeofday"

// TrainIdentifierLength is the exact length of a trimmed train identifier.
const TrainIdentifierLength = 4

// Train is a named service resolved through the train directory.
type Train struct {
	ID   int64
	Name string
}

// Station is the stop at which arrivals are recorded.
type Station struct {
	ID   int64
	Name string
}

// ScheduleEntry is one recurring daily arrival of a train at a station.
type ScheduleEntry struct {
	Train       Train
	Station     Station
	ArrivalTime timeofday.TimeOfDay
}

func entryArrival(entry ScheduleEntry) timeofday.TimeOfDay {
	return entry.ArrivalTime
}
