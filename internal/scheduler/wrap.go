package scheduler

import (
	"time"

	"github.com/example/train-scheduler/internal/timeofday"
)

// Wrap rotates a list already sorted ascending by time of day so that the
// first entry due at or after now leads and the entries that have already
// passed today follow in their original order. When every entry has passed
// the list keeps its original order. The input is never modified.
func Wrap[T any](entries []T, at func(T) timeofday.TimeOfDay, now time.Time) []T {
	out := make([]T, len(entries))
	if len(entries) < 2 {
		copy(out, entries)
		return out
	}

	pivot := -1
	for i, entry := range entries {
		if !at(entry).On(now).Before(now) {
			pivot = i
			break
		}
	}
	if pivot <= 0 {
		copy(out, entries)
		return out
	}

	n := copy(out, entries[pivot:])
	copy(out[n:], entries[:pivot])
	return out
}
