package sparkle

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/sparkle/pkg/bead"
	"github.com/vango-dev/sparkle/pkg/blink"
)

// Config describes an app.
type Config struct {
	// Seed is the undecorated initial state.
	Seed bead.State

	// Beads is the decoration pipeline, run in order on every pass.
	Beads []bead.Func

	// Render projects a state onto the surface. It must be safe to call
	// repeatedly with the same state. Optional.
	Render func(bead.State)

	// Setup runs once from Start, typically to Wire handlers. Optional.
	Setup func(app *App) error
}

// App is a running sparkle app.
type App struct {
	cfg       Config
	decorator *bead.Decorator
	state     *blink.Signal[bead.State]
	renderFx  *blink.Effect

	rt        *blink.Runtime
	surface   Surface
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   Metrics
	observers []bead.Observer
	maxDepth  int

	started atomic.Bool
}

// New decorates the seed, creates the state signal and registers Render as
// an effect (which renders once immediately). A failing bead returns an error.
func New(cfg Config, opts ...Option) (*App, error) {
	a := &App{
		cfg:      cfg,
		rt:       blink.Default(),
		logger:   slog.Default().With("component", "sparkle"),
		tracer:   otel.Tracer("sparkle"),
		metrics:  nopMetrics{},
		maxDepth: bead.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.surface == nil {
		a.surface = NewMemorySurface()
	}

	observers := a.observers
	if o, ok := a.metrics.(bead.Observer); ok {
		observers = append(observers, o)
	}
	a.decorator = bead.NewDecorator(cfg.Beads,
		bead.WithLogger(a.logger),
		bead.WithTracer(a.tracer),
		bead.WithObserver(fanout(observers)),
		bead.WithMaxDepth(a.maxDepth),
	)

	initial, err := a.decorator.Decorate(cfg.Seed)
	if err != nil {
		return nil, err
	}
	a.state = blink.NewSignalIn(a.rt, initial)

	if cfg.Render != nil {
		a.renderFx = a.rt.RunEffect(func() {
			cfg.Render(a.state.Get())
		})
	}
	return a, nil
}

// State returns the current decorated state without subscribing.
func (a *App) State() bead.State {
	return a.state.Peek()
}

// Signal returns the signal holding the decorated state.
func (a *App) Signal() *blink.Signal[bead.State] {
	return a.state
}

// Decorate runs the app's pipeline over s.
func (a *App) Decorate(s bead.State) (bead.State, error) {
	return a.decorator.Decorate(s)
}

// Surface returns the app's surface.
func (a *App) Surface() Surface {
	return a.surface
}

// Runtime returns the runtime the app's signal lives on.
func (a *App) Runtime() *blink.Runtime {
	return a.rt
}

// Logger returns the app logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Update computes the next state from the current one, decorates it and
// writes it to the signal. A nil next state or a decoration error leaves
// the current state in place and skips rendering.
func (a *App) Update(fn func(bead.State) bead.State) error {
	return a.UpdateContext(context.Background(), fn)
}

// UpdateContext is Update with a parent context for tracing.
func (a *App) UpdateContext(ctx context.Context, fn func(bead.State) bead.State) error {
	ctx, span := a.tracer.Start(ctx, "sparkle.update")
	defer span.End()

	next := fn(a.state.Peek())
	if next == nil {
		err := ErrInvalidUpdateResult.WithDetail("update returned nil")
		a.logger.Error("ignored invalid update result", "code", ErrInvalidUpdateResult.Code)
		a.metrics.ObserveUpdate("rejected")
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	start := time.Now()
	decorated, err := a.decorator.DecorateContext(ctx, next)
	if err != nil {
		a.logger.Error("decoration failed, keeping previous state", "error", err)
		a.metrics.ObserveUpdate("failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.Int64("sparkle.decorate_us", time.Since(start).Microseconds()))

	a.state.Set(decorated)
	a.metrics.ObserveUpdate("applied")

	if logFn, ok := a.state.Peek().Action("log"); ok {
		logFn()
	}
	return nil
}

// Handler reacts to a wired event. It returns nil for no change, a partial
// state, or a slice of partials merged left to right.
type Handler func(s bead.State, e Event) any

// Wire binds event on target to h.
func (a *App) Wire(target, event string, h Handler) {
	a.surface.Bind(target, event, func(payload any) error {
		return a.Dispatch(Event{Target: target, Name: event, Payload: payload}, h)
	})
}

// Dispatch runs h for ev against the current state and applies its result.
func (a *App) Dispatch(ev Event, h Handler) error {
	result := h(a.state.Peek(), ev)

	partial, err := partialOf(result)
	if err != nil {
		a.logger.Warn("ignored non-object wire result",
			"code", ErrInvalidWireResult.Code,
			"target", ev.Target,
			"event", ev.Name,
			"type", typeName(result),
		)
		a.metrics.ObserveWire(ev.Target, ev.Name, "rejected")
		return err
	}
	if partial == nil {
		a.metrics.ObserveWire(ev.Target, ev.Name, "ignored")
		return nil
	}

	if err := a.Update(func(cur bead.State) bead.State {
		return cur.Merge(partial)
	}); err != nil {
		a.metrics.ObserveWire(ev.Target, ev.Name, "failed")
		return err
	}
	a.metrics.ObserveWire(ev.Target, ev.Name, "applied")
	return nil
}

// Start renders the current state once and runs Setup. It may only be
// called once.
func (a *App) Start() error {
	if !a.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	if a.cfg.Render != nil {
		a.cfg.Render(a.state.Peek())
	}
	if a.cfg.Setup != nil {
		return a.cfg.Setup(a)
	}
	return nil
}

// Started reports whether Start has run.
func (a *App) Started() bool {
	return a.started.Load()
}

// Start starts app.
func Start(app *App) error {
	return app.Start()
}
