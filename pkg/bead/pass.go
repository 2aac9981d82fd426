package bead

import (
	"context"
	"log/slog"
	"time"
)

// Observer receives decoration measurements.
type Observer interface {
	// ObserveDecoration is called once per pass, redecorations included.
	ObserveDecoration(depth int, elapsed time.Duration, err error)

	// ObserveCollision is called when a bead overwrites existing keys.
	ObserveCollision(bead string, keys []string)
}

type nopObserver struct{}

func (nopObserver) ObserveDecoration(int, time.Duration, error) {}
func (nopObserver) ObserveCollision(string, []string)           {}

// Pass is the context a bead runs in. It carries the redecorate callback
// and the pass's logger, observer and depth. A nil *Pass is usable: its
// Redecorate returns the state unchanged.
type Pass struct {
	ctx        context.Context
	depth      int
	index      int
	logger     *slog.Logger
	observer   Observer
	redecorate Redecorate
}

// Redecorate re-runs the full pipeline over another state.
type Redecorate func(State) (State, error)

// Redecorate runs the whole pipeline over s one level deeper.
func (p *Pass) Redecorate(s State) (State, error) {
	if p == nil || p.redecorate == nil {
		return s.Clone(), nil
	}
	return p.redecorate(s)
}

// Context returns the pass context.
func (p *Pass) Context() context.Context {
	if p == nil || p.ctx == nil {
		return context.Background()
	}
	return p.ctx
}

// Depth returns 0 for a top-level pass and n for the nth nested redecoration.
func (p *Pass) Depth() int {
	if p == nil {
		return 0
	}
	return p.depth
}

// Index returns the position of the running bead in the pipeline.
func (p *Pass) Index() int {
	if p == nil {
		return 0
	}
	return p.index
}

// Logger returns the pass logger.
func (p *Pass) Logger() *slog.Logger {
	if p == nil || p.logger == nil {
		return slog.Default()
	}
	return p.logger
}

// Observer returns the pass observer.
func (p *Pass) Observer() Observer {
	if p == nil || p.observer == nil {
		return nopObserver{}
	}
	return p.observer
}
