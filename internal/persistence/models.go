package persistence

import "github.com/example/train-scheduler/internal/timeofday"

// Train is a row of the train roster.
type Train struct {
	ID   int64
	Name string
}

// Station is a row of the station catalog.
type Station struct {
	ID   int64
	Name string
}

// Schedule is a stored recurring daily arrival joined with its train and station.
type Schedule struct {
	ID          int64
	Train       Train
	Station     Station
	ArrivalTime timeofday.TimeOfDay
}
