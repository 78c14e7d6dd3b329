package engine

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jmaren/chronodeck/clock"
	"github.com/jmaren/chronodeck/format"
	"github.com/jmaren/chronodeck/registry"
)

// DarkClassifier decides whether an instant at a coordinate is dark.
type DarkClassifier interface {
	IsDark(lat, lon float64, utcInstant time.Time) bool
}

// Row is one location's view record for a single tick. Rows are ephemeral:
// rebuilt from scratch every tick, never stored.
type Row struct {
	ID       registry.ID
	Name     string
	Timezone string

	// Wall is the location's wall-clock reading re-stamped as UTC. It is
	// the chronological sort key: at one shared instant every location's
	// wall clock differs exactly by its zone offset, so comparing the
	// naive readings orders locations from west to east.
	Wall time.Time

	TimeText   string
	DateText   string
	OffsetText string

	// DeltaText compares this row to the chronologically previous row,
	// not the previous row in display order. Empty on the first row and
	// on rows adjacent to a degraded row.
	DeltaText    string
	DeltaMinutes int
	Direction    format.Direction

	Dark      bool
	DarkKnown bool

	// Err marks a degraded row: the location's timezone could not be
	// applied this tick. The other fields except Name are zero.
	Err error
}

// Engine recomputes the comparison view on every tick. It holds no
// per-tick state; the registry is the only thing that survives between
// ticks, so Tick is a pure function of (registry contents, instant).
type Engine struct {
	Registry   *registry.Registry
	Classifier DarkClassifier

	// LocalTime resolves a timezone at an instant. Overridable for tests;
	// defaults to clock.LocalTime.
	LocalTime func(timezoneID string, ref time.Time) (time.Time, int, error)

	mu       sync.Mutex
	mode     format.Mode
	dayNight bool
}

// New returns an engine over the given registry. classifier may be nil,
// which leaves rows unclassified even when day/night display is on.
func New(reg *registry.Registry, classifier DarkClassifier) *Engine {
	return &Engine{
		Registry:   reg,
		Classifier: classifier,
		LocalTime:  clock.LocalTime,
	}
}

// SetMode switches between 12-hour and 24-hour rendering. Takes effect on
// the next tick.
func (e *Engine) SetMode(mode format.Mode) {
	e.mu.Lock()
	e.mode = mode
	e.mu.Unlock()
}

// Mode returns the current hour mode.
func (e *Engine) Mode() format.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// SetDayNight toggles day/night classification for subsequent ticks.
func (e *Engine) SetDayNight(enabled bool) {
	e.mu.Lock()
	e.dayNight = enabled
	e.mu.Unlock()
}

// DayNight reports whether day/night classification is enabled.
func (e *Engine) DayNight() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dayNight
}

// Tick computes one comparison pass at the given instant.
//
// The instant is captured once by the caller and shared across all
// locations; re-reading the clock per location would skew the comparison.
// A location whose timezone fails to resolve yields a degraded row, and
// the tick still produces a row for every other location.
func (e *Engine) Tick(nowUTC time.Time) []Row {
	snapshot := e.Registry.Snapshot()

	e.mu.Lock()
	policy := format.Policy{Mode: e.mode}
	dayNight := e.dayNight
	e.mu.Unlock()

	rows := make([]Row, 0, len(snapshot))
	for _, loc := range snapshot {
		rows = append(rows, e.sample(loc, nowUTC, policy, dayNight))
	}

	// Ascending by wall reading; ties keep registry order.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Wall.Before(rows[j].Wall)
	})

	for i := 1; i < len(rows); i++ {
		if rows[i].Err != nil || rows[i-1].Err != nil {
			continue
		}
		deltaMinutes := int(rows[i].Wall.Sub(rows[i-1].Wall) / time.Minute)
		direction := format.DirectionOf(deltaMinutes)
		rows[i].DeltaMinutes = deltaMinutes
		rows[i].Direction = direction
		rows[i].DeltaText = policy.Delta(deltaMinutes, direction, rows[i-1].Name)
	}

	return rows
}

func (e *Engine) sample(loc registry.Location, nowUTC time.Time, policy format.Policy, dayNight bool) Row {
	row := Row{
		ID:       loc.ID,
		Name:     loc.Name,
		Timezone: loc.Timezone,
	}

	local, offsetMinutes, err := e.LocalTime(loc.Timezone, nowUTC)
	if err != nil {
		slog.Warn("location degraded this tick",
			"component", "engine",
			"location", loc.Name,
			"error", err,
		)
		row.Err = err
		// Degraded rows sort as if their clock read UTC, keeping the
		// rows-per-location invariant without inventing an offset.
		row.Wall = nowUTC.UTC()
		return row
	}

	row.Wall = time.Date(
		local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(),
		time.UTC,
	)
	row.TimeText = policy.Time(local)
	row.DateText = policy.Date(local)
	row.OffsetText = policy.UTCOffset(offsetMinutes)

	if dayNight && e.Classifier != nil {
		row.Dark = e.Classifier.IsDark(loc.Lat, loc.Lon, nowUTC)
		row.DarkKnown = true
	}

	return row
}
