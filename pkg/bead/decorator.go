package bead

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxDepth is the default redecoration recursion limit.
const DefaultMaxDepth = 32

// Func is a bead: it reads the state decorated so far and returns a partial
// state to merge into it. Returning an error aborts the pass.
type Func func(s State, p *Pass) (State, error)

// Decorator runs a fixed bead pipeline.
type Decorator struct {
	beads    []Func
	maxDepth int
	logger   *slog.Logger
	tracer   trace.Tracer
	observer Observer
}

// Option configures a Decorator.
type Option func(*Decorator)

// WithMaxDepth sets the redecoration recursion limit.
func WithMaxDepth(n int) Option {
	return func(d *Decorator) {
		if n > 0 {
			d.maxDepth = n
		}
	}
}

// WithLogger sets the logger handed to beads.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Decorator) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithTracer sets the tracer used for decoration spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(d *Decorator) {
		if tracer != nil {
			d.tracer = tracer
		}
	}
}

// WithObserver sets the decoration observer.
func WithObserver(o Observer) Option {
	return func(d *Decorator) {
		if o != nil {
			d.observer = o
		}
	}
}

// NewDecorator creates a decorator over beads. The slice is copied; the
// pipeline is fixed from here on.
func NewDecorator(beads []Func, opts ...Option) *Decorator {
	d := &Decorator{
		beads:    append([]Func(nil), beads...),
		maxDepth: DefaultMaxDepth,
		logger:   slog.Default().With("component", "bead"),
		tracer:   otel.Tracer("sparkle"),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Len returns the number of beads in the pipeline.
func (d *Decorator) Len() int {
	return len(d.beads)
}

// Decorate runs the pipeline over s.
func (d *Decorator) Decorate(s State) (State, error) {
	return d.DecorateContext(context.Background(), s)
}

// DecorateContext runs the pipeline over s with a parent context for tracing.
func (d *Decorator) DecorateContext(ctx context.Context, s State) (State, error) {
	return d.decorate(ctx, s, 0)
}

func (d *Decorator) decorate(ctx context.Context, s State, depth int) (State, error) {
	if depth > d.maxDepth {
		return nil, ErrRedecorateDepth.WithDetail("depth %d exceeds limit %d", depth, d.maxDepth)
	}

	ctx, span := d.tracer.Start(ctx, "sparkle.decorate",
		trace.WithAttributes(
			attribute.Int("sparkle.depth", depth),
			attribute.Int("sparkle.beads", len(d.beads)),
		),
	)
	defer span.End()
	start := time.Now()

	acc := s.Clone()
	pass := &Pass{
		ctx:      ctx,
		depth:    depth,
		logger:   d.logger,
		observer: d.observer,
		redecorate: func(next State) (State, error) {
			return d.decorate(ctx, next, depth+1)
		},
	}

	for i, fn := range d.beads {
		pass.index = i
		partial, err := fn(acc, pass)
		if err != nil {
			err = fmt.Errorf("bead %d: %w", i, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			d.observer.ObserveDecoration(depth, time.Since(start), err)
			return nil, err
		}
		acc = acc.Merge(partial)
	}

	d.observer.ObserveDecoration(depth, time.Since(start), nil)
	return acc, nil
}

// Compose decorates seed with beads using default options.
func Compose(seed State, beads ...Func) (State, error) {
	return NewDecorator(beads).Decorate(seed)
}

// Pipe chains state transformations left to right, stopping at the first
// error.
func Pipe(fns ...func(State) (State, error)) func(State) (State, error) {
	return func(s State) (State, error) {
		var err error
		for _, fn := range fns {
			if s, err = fn(s); err != nil {
				return nil, err
			}
		}
		return s, nil
	}
}
