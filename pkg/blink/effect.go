package blink

import (
	"sync/atomic"
)

// Effect is a callback re-run whenever a signal it read changes.
type Effect struct {
	id uint64

	fn func()

	rt *Runtime

	// runs counts completed and in-progress executions.
	runs atomic.Int64

	disposed atomic.Bool
}

// run executes the effect with itself as the tracking target. The runtime's
// stack is restored even if fn panics.
func (e *Effect) run() {
	if e.disposed.Load() {
		return
	}
	e.rt.push(e)
	defer e.rt.pop()
	e.runs.Add(1)
	e.fn()
}

// ID returns the unique identifier for this effect.
func (e *Effect) ID() uint64 {
	return e.id
}

// Runs returns how many times the effect has started.
func (e *Effect) Runs() int {
	return int(e.runs.Load())
}

// Dispose stops the effect. Signals keep it in their subscriber lists but
// skip it on later writes.
func (e *Effect) Dispose() {
	e.disposed.Store(true)
}

// Disposed reports whether Dispose was called.
func (e *Effect) Disposed() bool {
	return e.disposed.Load()
}
