package format_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jmaren/chronodeck/format"
)

func TestTime_Modes(t *testing.T) {
	afternoon := time.Date(2025, 6, 1, 15, 4, 5, 0, time.UTC)
	morning := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, "15:04:05", format.Policy{Mode: format.Mode24}.Time(afternoon))
	assert.Equal(t, "03:04:05 PM", format.Policy{Mode: format.Mode12}.Time(afternoon))
	assert.Equal(t, "09:30:00 AM", format.Policy{Mode: format.Mode12}.Time(morning))
}

func TestTime_ModeAppliesImmediately(t *testing.T) {
	ts := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)

	p := format.Policy{Mode: format.Mode24}
	assert.Equal(t, "23:00:00", p.Time(ts))

	p.Mode = format.Mode12
	assert.Equal(t, "11:00:00 PM", p.Time(ts))
}

func TestUTCOffset(t *testing.T) {
	p := format.Policy{}

	assert.Equal(t, "UTC+09:00", p.UTCOffset(540))
	assert.Equal(t, "UTC-05:00", p.UTCOffset(-300))
	assert.Equal(t, "UTC+05:30", p.UTCOffset(330))
	assert.Equal(t, "UTC+00:00", p.UTCOffset(0))
}

func TestDirectionOf(t *testing.T) {
	assert.Equal(t, format.Ahead, format.DirectionOf(540))
	assert.Equal(t, format.Behind, format.DirectionOf(-60))
	assert.Equal(t, format.Behind, format.DirectionOf(0))
}

func TestDelta(t *testing.T) {
	p := format.Policy{}

	assert.Equal(t, "9h 0m ahead of London", p.Delta(540, format.Ahead, "London"))
	assert.Equal(t, "5h 30m behind Kolkata", p.Delta(-330, format.Behind, "Kolkata"))
	assert.Equal(t, "0h 45m ahead of Adelaide", p.Delta(45, format.Ahead, "Adelaide"))
}
