package scheduler

import (
	"sort"

	"github.com/example/train-scheduler/internal/timeofday"
)

// Slot is one recurring daily arrival of a train at a station.
type Slot struct {
	TrainID   int64
	TrainName string
	StationID int64
	At        timeofday.TimeOfDay
}

type slotKey struct {
	stationID int64
	at        timeofday.TimeOfDay
}

// DetectCollisions returns every slot whose station and arrival time are shared
// with at least one other distinct train. The result is ordered by arrival
// time, then train name, then train id.
func DetectCollisions(slots []Slot) []Slot {
	if len(slots) < 2 {
		return nil
	}

	trains := make(map[slotKey]map[int64]struct{}, len(slots))
	for _, slot := range slots {
		key := slotKey{stationID: slot.StationID, at: slot.At}
		if trains[key] == nil {
			trains[key] = make(map[int64]struct{})
		}
		trains[key][slot.TrainID] = struct{}{}
	}

	var collisions []Slot
	seen := make(map[Slot]struct{}, len(slots))
	for _, slot := range slots {
		if len(trains[slotKey{stationID: slot.StationID, at: slot.At}]) < 2 {
			continue
		}
		if _, dup := seen[slot]; dup {
			continue
		}
		seen[slot] = struct{}{}
		collisions = append(collisions, slot)
	}

	sort.SliceStable(collisions, func(i, j int) bool {
		a, b := collisions[i], collisions[j]
		if c := a.At.Compare(b.At); c != 0 {
			return c < 0
		}
		if a.TrainName != b.TrainName {
			return a.TrainName < b.TrainName
		}
		return a.TrainID < b.TrainID
	})
	return collisions
}
