package clock

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimezone is returned when a timezone identifier is not known
// to the timezone database.
var ErrInvalidTimezone = errors.New("invalid timezone identifier")

// Clock abstracts time.Now() to allow deterministic testing of anything
// that is driven by the current instant.
type Clock interface {
	Now() time.Time
}

// System implements Clock using the standard time package.
type System struct{}

// Now returns the current instant in UTC.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// LocalTime converts a reference instant into the wall-clock time of the
// given IANA timezone and reports the zone's UTC offset in minutes at that
// instant. DST rules for the reference date are applied by the timezone
// database.
//
// The reference instant is captured once per tick and shared across all
// locations, so every location in a tick is compared at the same instant.
func LocalTime(timezoneID string, ref time.Time) (time.Time, int, error) {
	// time.LoadLocation("") silently means UTC; reject it so a location
	// with a missing identifier surfaces as an error instead.
	if timezoneID == "" {
		return time.Time{}, 0, fmt.Errorf("%w: empty identifier", ErrInvalidTimezone)
	}

	loc, err := time.LoadLocation(timezoneID)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimezone, timezoneID, err)
	}

	local := ref.In(loc)
	_, offsetSeconds := local.Zone()

	return local, offsetSeconds / 60, nil
}
