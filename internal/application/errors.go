package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/example/train-scheduler/internal/timeofday"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrTrainNotFound is returned when a train identifier does not resolve.
	ErrTrainNotFound = fmt.Errorf("%w: train", ErrNotFound)
	// ErrInvalidIdentifier is returned when a train identifier is not exactly
	// four characters after trimming.
	ErrInvalidIdentifier = errors.New("application: invalid train identifier")
	// ErrEmptyInput is returned when no arrival times are supplied.
	ErrEmptyInput = errors.New("application: no arrival times supplied")
	// ErrDuplicateSchedule is returned when a train already arrives at a given time.
	ErrDuplicateSchedule = errors.New("application: duplicate schedule")

	// ErrInvalidFormat, ErrInvalidHour and ErrInvalidMinute report arrival
	// times that fail to parse.
	ErrInvalidFormat = timeofday.ErrInvalidFormat
	ErrInvalidHour   = timeofday.ErrInvalidHour
	ErrInvalidMinute = timeofday.ErrInvalidMinute
)

// ValidationError captures field level validation issues that callers can
// surface to users. It unwraps to the sentinel describing the first failure.
type ValidationError struct {
	FieldErrors map[string]string
	cause       error
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v.FieldErrors[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the sentinel behind the failure.
func (v *ValidationError) Unwrap() error {
	if v == nil {
		return nil
	}
	return v.cause
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error. The first cause recorded wins.
func (v *ValidationError) add(field, message string, cause error) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
	if v.cause == nil {
		v.cause = cause
	}
}

func newValidationError(field, message string, cause error) *ValidationError {
	vErr := &ValidationError{}
	vErr.add(field, message, cause)
	return vErr
}

// DuplicateScheduleError names the train and arrival time that already exist.
type DuplicateScheduleError struct {
	Train       string
	ArrivalTime timeofday.TimeOfDay
}

func (e *DuplicateScheduleError) Error() string {
	return fmt.Sprintf("application: train %q already arrives at %s", e.Train, e.ArrivalTime)
}

// Is matches ErrDuplicateSchedule.
func (e *DuplicateScheduleError) Is(target error) bool {
	return target == ErrDuplicateSchedule
}
