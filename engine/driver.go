package engine

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmaren/chronodeck/clock"
)

// Driver invokes the engine at a fixed interval and hands each result to
// a callback. A tick that is still running when the next interval fires
// causes that interval to be skipped, never queued: overlapping ticks
// would mean concurrent timezone computation over the same snapshot for
// no benefit.
type Driver struct {
	Interval time.Duration
	Clock    clock.Clock

	engine *Engine
	onRows func([]Row)

	busy    atomic.Bool
	skipped atomic.Int64

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewDriver returns a driver ticking at the given interval. onRows is
// called with the output of every completed tick; calls never overlap.
func NewDriver(e *Engine, interval time.Duration, onRows func([]Row)) *Driver {
	return &Driver{
		Interval: interval,
		Clock:    clock.System{},
		engine:   e,
		onRows:   onRows,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the tick loop in its own goroutine.
func (d *Driver) Start() {
	go d.loop()
}

// Stop halts the tick loop and waits for an in-flight tick to finish.
// Safe to call more than once.
func (d *Driver) Stop() {
	d.stopOnce.Do(func() {
		close(d.stop)
	})
	<-d.done
}

// Skipped returns how many intervals were dropped because the previous
// tick had not finished.
func (d *Driver) Skipped() int64 {
	return d.skipped.Load()
}

func (d *Driver) loop() {
	defer close(d.done)

	ticker := time.NewTicker(d.Interval)
	defer ticker.Stop()

	// Immediate first tick so startup does not show an empty view for a
	// whole interval.
	d.runTick()

	for {
		select {
		case <-d.stop:
			// Let an in-flight tick drain before reporting done.
			for d.busy.Load() {
				time.Sleep(time.Millisecond)
			}
			return
		case <-ticker.C:
			d.runTick()
		}
	}
}

func (d *Driver) runTick() {
	if !d.busy.CompareAndSwap(false, true) {
		d.skipped.Add(1)
		slog.Debug("tick skipped, previous still running", "component", "driver")
		return
	}

	go func() {
		defer d.busy.Store(false)
		rows := d.engine.Tick(d.Clock.Now())
		d.onRows(rows)
	}()
}
