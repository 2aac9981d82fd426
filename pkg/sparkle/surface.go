package sparkle

import (
	"sort"
	"sync"
)

// Event is a surface event delivered to a wired handler.
type Event struct {
	Target  string
	Name    string
	Payload any
}

// Surface hosts an app's UI targets.
type Surface interface {
	// Bind registers fn for event on target, replacing any earlier binding.
	Bind(target, event string, fn func(payload any) error)
}

// View is rendered output keyed by UI target.
type View map[string]any

// Display receives rendered views.
type Display interface {
	Show(view View)
}

// Scheduler runs work on the host's event loop. Work that originates off
// the loop (timers, background jobs) must go through it.
type Scheduler interface {
	Enqueue(fn func())
}

// MemorySurface is an in-process surface. Events are fired by calling Fire.
// It also records shown views and runs enqueued work inline, one job at a
// time.
type MemorySurface struct {
	mu       sync.RWMutex
	bindings map[string]func(any) error
	targets  map[string]bool
	views    []View

	// loop serializes Fire and Enqueue.
	loop sync.Mutex
}

// NewMemorySurface creates an empty surface with the given declared targets.
func NewMemorySurface(targets ...string) *MemorySurface {
	m := &MemorySurface{
		bindings: make(map[string]func(any) error),
		targets:  make(map[string]bool),
	}
	m.Declare(targets...)
	return m
}

// Declare records targets the surface provides.
func (m *MemorySurface) Declare(targets ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range targets {
		m.targets[t] = true
	}
}

// HasTarget reports whether target was declared or has a binding.
func (m *MemorySurface) HasTarget(target string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.targets[target] {
		return true
	}
	for key := range m.bindings {
		if len(key) > len(target) && key[:len(target)] == target && key[len(target)] == 0 {
			return true
		}
	}
	return false
}

// Show implements Display.
func (m *MemorySurface) Show(view View) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views = append(m.views, view)
}

// Views returns every view shown so far.
func (m *MemorySurface) Views() []View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]View(nil), m.views...)
}

// LastView returns the most recent view, or nil.
func (m *MemorySurface) LastView() View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.views) == 0 {
		return nil
	}
	return m.views[len(m.views)-1]
}

// Enqueue implements Scheduler by running fn inline, serialized with Fire.
func (m *MemorySurface) Enqueue(fn func()) {
	m.loop.Lock()
	defer m.loop.Unlock()
	fn()
}

func bindingKey(target, event string) string {
	return target + "\x00" + event
}

// Bind implements Surface.
func (m *MemorySurface) Bind(target, event string, fn func(payload any) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings[bindingKey(target, event)] = fn
}

// Fire delivers an event synchronously and returns the handler's error.
func (m *MemorySurface) Fire(target, event string, payload any) error {
	m.mu.RLock()
	fn, ok := m.bindings[bindingKey(target, event)]
	m.mu.RUnlock()
	if !ok {
		return ErrNotBound
	}
	m.loop.Lock()
	defer m.loop.Unlock()
	return fn(payload)
}

// Bound reports whether something is wired to event on target.
func (m *MemorySurface) Bound(target, event string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.bindings[bindingKey(target, event)]
	return ok
}

// Targets returns the distinct bound targets, sorted.
func (m *MemorySurface) Targets() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for key := range m.bindings {
		for i := 0; i < len(key); i++ {
			if key[i] == 0 {
				if t := key[:i]; !seen[t] {
					seen[t] = true
					out = append(out, t)
				}
				break
			}
		}
	}
	sort.Strings(out)
	return out
}
