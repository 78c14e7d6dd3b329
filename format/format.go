package format

import (
	"fmt"
	"time"
)

// Mode selects between 24-hour and 12-hour clock rendering.
type Mode int

const (
	Mode24 Mode = iota
	Mode12
)

// Direction labels which way a delta points relative to the neighbor.
type Direction string

const (
	Ahead  Direction = "ahead of"
	Behind Direction = "behind"
)

// DirectionOf maps a signed delta in minutes to its label. A positive
// delta means the location's wall clock is ahead of its chronological
// neighbor; zero and negative read as behind, matching the sign rule.
func DirectionOf(deltaMinutes int) Direction {
	if deltaMinutes > 0 {
		return Ahead
	}
	return Behind
}

// Policy renders times and deltas for display. It carries no state beyond
// the hour mode, which the user may toggle at any time; the next render
// simply picks up the new value.
type Policy struct {
	Mode Mode
}

// Time renders a wall-clock time under the current hour mode.
func (p Policy) Time(t time.Time) string {
	if p.Mode == Mode12 {
		return t.Format("03:04:05 PM")
	}
	return t.Format("15:04:05")
}

// Date renders the calendar date as YYYY-MM-DD.
func (p Policy) Date(t time.Time) string {
	return t.Format("2006-01-02")
}

// UTCOffset renders an offset in minutes as UTC±HH:MM.
func (p Policy) UTCOffset(offsetMinutes int) string {
	sign := "+"
	if offsetMinutes < 0 {
		sign = "-"
		offsetMinutes = -offsetMinutes
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, offsetMinutes/60, offsetMinutes%60)
}

// Delta renders a signed delta against the named chronological neighbor,
// e.g. "9h 0m ahead of London".
func (p Policy) Delta(deltaMinutes int, direction Direction, neighbor string) string {
	minutes := deltaMinutes
	if minutes < 0 {
		minutes = -minutes
	}
	return fmt.Sprintf("%dh %dm %s %s", minutes/60, minutes%60, direction, neighbor)
}
