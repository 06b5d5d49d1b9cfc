// Package timeofday models a daily recurring wall-clock time with minute
// precision, as used for train arrival times.
//
// Values are parsed from the strict four digit 24-hour form ("HHMM") accepted
// at the service boundary and rendered in the canonical "HH:MM:00" form used
// by storage and API responses.
package timeofday

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidFormat is returned when the input is not exactly four ASCII digits.
	ErrInvalidFormat = errors.New("timeofday: invalid format")
	// ErrInvalidHour is returned when the hour component falls outside 00-23.
	ErrInvalidHour = errors.New("timeofday: invalid hour")
	// ErrInvalidMinute is returned when the minute component falls outside 00-59.
	ErrInvalidMinute = errors.New("timeofday: invalid minute")
)

const (
	maxHour   = 23
	maxMinute = 59
)

// ParseError reports the raw input that failed to parse along with the
// underlying sentinel.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Input)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TimeOfDay is an immutable hour and minute pair. The zero value is midnight.
// Two values are equal exactly when their canonical renderings match.
type TimeOfDay struct {
	hour   uint8
	minute uint8
}

// New builds a TimeOfDay from numeric components.
func New(hour, minute int) (TimeOfDay, error) {
	input := fmt.Sprintf("%02d%02d", hour, minute)
	if hour < 0 || hour > maxHour {
		return TimeOfDay{}, &ParseError{Input: input, Err: ErrInvalidHour}
	}
	if minute < 0 || minute > maxMinute {
		return TimeOfDay{}, &ParseError{Input: input, Err: ErrInvalidMinute}
	}
	return TimeOfDay{hour: uint8(hour), minute: uint8(minute)}, nil
}

// MustNew is like New but panics on invalid components. Intended for fixtures.
func MustNew(hour, minute int) TimeOfDay {
	t, err := New(hour, minute)
	if err != nil {
		panic(err)
	}
	return t
}

// Parse validates a four digit "HHMM" string. The hour is checked before the
// minute, so "2460" reports ErrInvalidHour.
func Parse(raw string) (TimeOfDay, error) {
	if len(raw) != 4 {
		return TimeOfDay{}, &ParseError{Input: raw, Err: ErrInvalidFormat}
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return TimeOfDay{}, &ParseError{Input: raw, Err: ErrInvalidFormat}
		}
	}

	hour := int(raw[0]-'0')*10 + int(raw[1]-'0')
	minute := int(raw[2]-'0')*10 + int(raw[3]-'0')
	if hour > maxHour {
		return TimeOfDay{}, &ParseError{Input: raw, Err: ErrInvalidHour}
	}
	if minute > maxMinute {
		return TimeOfDay{}, &ParseError{Input: raw, Err: ErrInvalidMinute}
	}
	return TimeOfDay{hour: uint8(hour), minute: uint8(minute)}, nil
}

// ParseCanonical parses the "HH:MM" or "HH:MM:SS" forms produced by Canonical
// and by SQL TIME columns. Seconds must be zero.
func ParseCanonical(raw string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return TimeOfDay{}, &ParseError{Input: raw, Err: ErrInvalidFormat}
	}
	for _, part := range parts {
		if len(part) != 2 {
			return TimeOfDay{}, &ParseError{Input: raw, Err: ErrInvalidFormat}
		}
	}
	if len(parts) == 3 && parts[2] != "00" {
		return TimeOfDay{}, &ParseError{Input: raw, Err: ErrInvalidFormat}
	}
	t, err := Parse(parts[0] + parts[1])
	if err != nil {
		var pErr *ParseError
		if errors.As(err, &pErr) {
			pErr.Input = raw
		}
		return TimeOfDay{}, err
	}
	return t, nil
}

// Hour returns the hour component in 0-23.
func (t TimeOfDay) Hour() int { return int(t.hour) }

// Minute returns the minute component in 0-59.
func (t TimeOfDay) Minute() int { return int(t.minute) }

// Canonical renders the value as "HH:MM:00".
func (t TimeOfDay) Canonical() string {
	return fmt.Sprintf("%02d:%02d:00", t.hour, t.minute)
}

// String implements fmt.Stringer using the canonical form.
func (t TimeOfDay) String() string {
	return t.Canonical()
}

// Compact renders the four digit "HHMM" input form.
func (t TimeOfDay) Compact() string {
	return fmt.Sprintf("%02d%02d", t.hour, t.minute)
}

func (t TimeOfDay) minutes() int {
	return int(t.hour)*60 + int(t.minute)
}

// Compare returns -1, 0 or +1 depending on whether t is before, equal to or
// after other within the day.
func (t TimeOfDay) Compare(other TimeOfDay) int {
	switch a, b := t.minutes(), other.minutes(); {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Before reports whether t occurs earlier in the day than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Compare(other) < 0
}

// On returns the instant at which t occurs on the calendar day of reference,
// in reference's location.
func (t TimeOfDay) On(reference time.Time) time.Time {
	y, m, d := reference.Date()
	return time.Date(y, m, d, int(t.hour), int(t.minute), 0, 0, reference.Location())
}

// MarshalText encodes the canonical form.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.Canonical()), nil
}

// UnmarshalText accepts either the canonical or the compact form.
func (t *TimeOfDay) UnmarshalText(text []byte) error {
	raw := string(text)
	var (
		parsed TimeOfDay
		err    error
	)
	if strings.Contains(raw, ":") {
		parsed, err = ParseCanonical(raw)
	} else {
		parsed, err = Parse(raw)
	}
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer using the canonical form.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.Canonical(), nil
}

// Scan implements sql.Scanner for TEXT and TIME columns.
func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return t.UnmarshalText([]byte(v))
	case []byte:
		return t.UnmarshalText(v)
	case time.Time:
		parsed, err := New(v.Hour(), v.Minute())
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case nil:
		return fmt.Errorf("timeofday: cannot scan NULL")
	default:
		return fmt.Errorf("timeofday: cannot scan %T", src)
	}
}
