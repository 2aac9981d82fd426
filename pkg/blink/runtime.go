package blink

import (
	"sync"
)

// DefaultMaxDepth is the default limit on nested effect runs.
const DefaultMaxDepth = 1024

// Runtime tracks running effects and pending batched notifications.
type Runtime struct {
	mu sync.Mutex

	// stack holds the running effects, innermost last. A nil entry
	// suspends tracking (see Untrack).
	stack []*Effect

	maxDepth int

	// batchDepth counts nested Batch calls.
	batchDepth int

	// pending accumulates effects to run when the outermost batch ends.
	pending []*Effect
}

var defaultRuntime = NewRuntime()

// Default returns the process-wide runtime used by the package functions.
func Default() *Runtime {
	return defaultRuntime
}

// NewRuntime creates an isolated runtime.
func NewRuntime() *Runtime {
	return &Runtime{maxDepth: DefaultMaxDepth}
}

// WithMaxDepth sets the nested effect limit and returns the runtime.
// Values below 1 restore the default.
func (rt *Runtime) WithMaxDepth(n int) *Runtime {
	if n < 1 {
		n = DefaultMaxDepth
	}
	rt.mu.Lock()
	rt.maxDepth = n
	rt.mu.Unlock()
	return rt
}

// current returns the effect that signal reads should subscribe, or nil.
func (rt *Runtime) current() *Effect {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if len(rt.stack) == 0 {
		return nil
	}
	return rt.stack[len(rt.stack)-1]
}

// push makes e the current effect. It panics with ErrEffectDepth when the
// stack is already at max depth.
func (rt *Runtime) push(e *Effect) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if e != nil && len(rt.stack) >= rt.maxDepth {
		panic(ErrEffectDepth.WithDetail("%d nested effect runs", len(rt.stack)))
	}
	rt.stack = append(rt.stack, e)
}

func (rt *Runtime) pop() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if n := len(rt.stack); n > 0 {
		rt.stack[n-1] = nil
		rt.stack = rt.stack[:n-1]
	}
}

// Depth returns the number of effects currently running.
func (rt *Runtime) Depth() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	n := 0
	for _, e := range rt.stack {
		if e != nil {
			n++
		}
	}
	return n
}

// notify runs subs in order, or queues them while a batch is open.
func (rt *Runtime) notify(subs []*Effect) {
	rt.mu.Lock()
	if rt.batchDepth > 0 {
		rt.pending = append(rt.pending, subs...)
		rt.mu.Unlock()
		return
	}
	rt.mu.Unlock()

	for _, e := range subs {
		e.run()
	}
}

// RunEffect creates an effect on the runtime and runs it once.
func (rt *Runtime) RunEffect(fn func()) *Effect {
	e := &Effect{
		id: nextID(),
		fn: fn,
		rt: rt,
	}
	e.run()
	return e
}

// Batch defers notifications from writes inside fn until fn returns.
// Each queued effect then runs once, in the order it was first queued.
// Batches nest; only the outermost one flushes.
func (rt *Runtime) Batch(fn func()) {
	rt.mu.Lock()
	rt.batchDepth++
	rt.mu.Unlock()

	defer func() {
		rt.mu.Lock()
		rt.batchDepth--
		var pending []*Effect
		if rt.batchDepth == 0 {
			pending = rt.pending
			rt.pending = nil
		}
		rt.mu.Unlock()

		if len(pending) == 0 {
			return
		}
		seen := make(map[uint64]bool, len(pending))
		for _, e := range pending {
			if seen[e.id] {
				continue
			}
			seen[e.id] = true
			e.run()
		}
	}()

	fn()
}

// Untrack runs fn without subscribing the current effect to signals read
// inside it.
func (rt *Runtime) Untrack(fn func()) {
	rt.push(nil)
	defer rt.pop()
	fn()
}

// RunEffect runs fn as an effect on the default runtime.
func RunEffect(fn func()) *Effect {
	return defaultRuntime.RunEffect(fn)
}

// Batch groups writes on the default runtime.
func Batch(fn func()) {
	defaultRuntime.Batch(fn)
}

// Untrack runs fn on the default runtime with tracking suspended.
func Untrack(fn func()) {
	defaultRuntime.Untrack(fn)
}
