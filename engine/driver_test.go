package engine_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmaren/chronodeck/engine"
)

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

func TestDriver_DeliversRows(t *testing.T) {
	r := newRegistry(t, [2]string{"London", "Europe/London"})
	e := engine.New(r, nil)

	var mu sync.Mutex
	var got [][]engine.Row
	d := engine.NewDriver(e, 10*time.Millisecond, func(rows []engine.Row) {
		mu.Lock()
		got = append(got, rows)
		mu.Unlock()
	})
	d.Clock = fixedClock{t: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)}

	d.Start()
	time.Sleep(60 * time.Millisecond)
	d.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, got)
	for _, rows := range got {
		require.Len(t, rows, 1)
		assert.Equal(t, "London", rows[0].Name)
		assert.Equal(t, "00:00:00", rows[0].TimeText)
	}
}

func TestDriver_SkipsOverlappingTicks(t *testing.T) {
	r := newRegistry(t, [2]string{"London", "Europe/London"})
	e := engine.New(r, nil)

	var calls atomic.Int64
	d := engine.NewDriver(e, 5*time.Millisecond, func(rows []engine.Row) {
		calls.Add(1)
		// Hold the tick well past several intervals.
		time.Sleep(40 * time.Millisecond)
	})

	d.Start()
	time.Sleep(100 * time.Millisecond)
	d.Stop()

	// Roughly 20 intervals elapsed but each tick blocks for 8 of them,
	// so most intervals must have been skipped rather than queued.
	assert.LessOrEqual(t, calls.Load(), int64(5))
	assert.Greater(t, d.Skipped(), int64(0))
}

func TestDriver_StopIsIdempotent(t *testing.T) {
	r := newRegistry(t, [2]string{"London", "Europe/London"})
	e := engine.New(r, nil)
	d := engine.NewDriver(e, 10*time.Millisecond, func([]engine.Row) {})

	d.Start()
	d.Stop()
	assert.NotPanics(t, func() { d.Stop() })
}
