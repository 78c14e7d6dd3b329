package daynight_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jmaren/chronodeck/daynight"
)

// fixedOracle returns the same sun times for every query.
type fixedOracle struct {
	rise, set time.Time
	ok        bool
}

func (f fixedOracle) SunTimes(lat, lon float64, year int, month time.Month, day int) (time.Time, time.Time, bool) {
	return f.rise, f.set, f.ok
}

func TestIsDark_BetweenRiseAndSet(t *testing.T) {
	rise := time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC)
	set := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	c := &daynight.Classifier{Oracle: fixedOracle{rise: rise, set: set, ok: true}}

	noon := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.False(t, c.IsDark(0, 0, noon))
}

func TestIsDark_BeforeRiseAndAfterSet(t *testing.T) {
	rise := time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC)
	set := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	c := &daynight.Classifier{Oracle: fixedOracle{rise: rise, set: set, ok: true}}

	assert.True(t, c.IsDark(0, 0, time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)))
	assert.True(t, c.IsDark(0, 0, time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)))
}

func TestIsDark_BoundaryInstantsAreDay(t *testing.T) {
	// Darkness begins strictly after sunset, so the sunset instant itself
	// is day. Same for the sunrise instant.
	rise := time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC)
	set := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	c := &daynight.Classifier{Oracle: fixedOracle{rise: rise, set: set, ok: true}}

	assert.False(t, c.IsDark(0, 0, set))
	assert.False(t, c.IsDark(0, 0, rise))
}

func TestIsDark_PolarCasesDefaultToDay(t *testing.T) {
	c := &daynight.Classifier{Oracle: fixedOracle{ok: false}}

	midwinter := time.Date(2025, 12, 21, 12, 0, 0, 0, time.UTC)
	assert.False(t, c.IsDark(78.22, 15.63, midwinter))
}

func TestIsDark_NonUTCInstantNormalized(t *testing.T) {
	rise := time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC)
	set := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	c := &daynight.Classifier{Oracle: fixedOracle{rise: rise, set: set, ok: true}}

	// 23:00 in Tokyo is 14:00 UTC, inside the daylight window.
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	assert.NoError(t, err)
	instant := time.Date(2025, 6, 1, 23, 0, 0, 0, tokyo)

	assert.False(t, c.IsDark(35.68, 139.69, instant))
}

func TestSolarOracle_EquatorAlwaysDefined(t *testing.T) {
	rise, set, ok := daynight.SolarOracle{}.SunTimes(0, 0, 2025, time.March, 20)
	assert.True(t, ok)
	assert.True(t, rise.Before(set))
}

func TestSolarOracle_PolarNightUndefined(t *testing.T) {
	// Longyearbyen in late December: the sun never rises.
	_, _, ok := daynight.SolarOracle{}.SunTimes(78.22, 15.63, 2025, time.December, 21)
	assert.False(t, ok)
}
