package blink

import (
	"sync"
)

// Signal is a reactive value cell. Reading it inside an effect subscribes
// the effect; writing it re-runs every subscriber.
type Signal[T any] struct {
	id uint64

	rt *Runtime

	// mu protects value and subs.
	mu    sync.Mutex
	value T

	// subs are the subscribed effects in insertion order, deduplicated.
	subs []*Effect
}

// NewSignal creates a signal on the default runtime.
func NewSignal[T any](initial T) *Signal[T] {
	return NewSignalIn(defaultRuntime, initial)
}

// NewSignalIn creates a signal on rt.
func NewSignalIn[T any](rt *Runtime, initial T) *Signal[T] {
	return &Signal[T]{
		id:    nextID(),
		rt:    rt,
		value: initial,
	}
}

// Get returns the current value and subscribes the running effect, if any.
func (s *Signal[T]) Get() T {
	e := s.rt.current()

	s.mu.Lock()
	defer s.mu.Unlock()
	if e != nil {
		s.subscribe(e)
	}
	return s.value
}

// subscribe adds e unless it is already present. Callers hold s.mu.
func (s *Signal[T]) subscribe(e *Effect) {
	for _, existing := range s.subs {
		if existing == e {
			return
		}
	}
	s.subs = append(s.subs, e)
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set stores value and re-runs every subscriber before returning.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	s.value = value
	subs := make([]*Effect, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	s.rt.notify(subs)
}

// Update replaces the value with fn(current) and notifies.
func (s *Signal[T]) Update(fn func(T) T) {
	s.Set(fn(s.Peek()))
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.id
}

// Subscribers returns the number of subscribed effects, disposed ones included.
func (s *Signal[T]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// NewDerived creates a signal on the default runtime whose value is kept
// equal to fn() by an effect.
func NewDerived[T any](fn func() T) *Signal[T] {
	return NewDerivedIn(defaultRuntime, fn)
}

// NewDerivedIn creates a derived signal on rt. The returned signal notifies
// its own subscribers each time fn re-runs.
func NewDerivedIn[T any](rt *Runtime, fn func() T) *Signal[T] {
	var zero T
	derived := NewSignalIn(rt, zero)
	rt.RunEffect(func() {
		derived.Set(fn())
	})
	return derived
}
