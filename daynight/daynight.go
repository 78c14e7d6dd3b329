package daynight

import (
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// Oracle provides the sunrise and sunset instants, in UTC, for a coordinate
// on a given calendar date. ok is false when the instants are undefined,
// which happens during polar day and polar night.
type Oracle interface {
	SunTimes(lat, lon float64, year int, month time.Month, day int) (rise, set time.Time, ok bool)
}

// SolarOracle computes sun times from orbital mechanics.
type SolarOracle struct{}

// SunTimes returns the UTC sunrise and sunset for the given date.
func (SolarOracle) SunTimes(lat, lon float64, year int, month time.Month, day int) (time.Time, time.Time, bool) {
	rise, set := sunrise.SunriseSunset(lat, lon, year, month, day)
	if rise.IsZero() || set.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	return rise, set, true
}

// Classifier decides whether an instant at a coordinate falls in darkness.
type Classifier struct {
	Oracle Oracle
}

// NewClassifier returns a Classifier backed by the solar oracle.
func NewClassifier() *Classifier {
	return &Classifier{Oracle: SolarOracle{}}
}

// IsDark reports whether the given UTC instant is after sunset or before
// sunrise at the coordinate. Sun times are taken for the UTC calendar date
// of the instant, and the comparison happens in UTC on both sides; mixing
// local and UTC here is how off-by-timezone bugs creep in.
//
// The boundary instants themselves count as day: darkness begins strictly
// after sunset and ends at sunrise. Polar day and polar night, where the
// oracle has no instants to offer, are classified as day.
func (c *Classifier) IsDark(lat, lon float64, utcInstant time.Time) bool {
	utc := utcInstant.UTC()

	rise, set, ok := c.Oracle.SunTimes(lat, lon, utc.Year(), utc.Month(), utc.Day())
	if !ok {
		return false
	}

	return utc.Before(rise) || utc.After(set)
}
