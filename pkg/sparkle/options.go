package sparkle

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/sparkle/pkg/bead"
	"github.com/vango-dev/sparkle/pkg/blink"
)

// Metrics receives app-level outcomes. Implementations that also satisfy
// bead.Observer are handed to the decorator.
type Metrics interface {
	// ObserveUpdate records an update outcome: applied, rejected or failed.
	ObserveUpdate(result string)

	// ObserveWire records a wired event outcome: applied, ignored,
	// rejected or failed.
	ObserveWire(target, event, result string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveUpdate(string)               {}
func (nopMetrics) ObserveWire(string, string, string) {}

// Option configures an App.
type Option func(*App)

// WithSurface sets the UI surface. Default: a new MemorySurface.
func WithSurface(s Surface) Option {
	return func(a *App) {
		if s != nil {
			a.surface = s
		}
	}
}

// WithLogger sets the app logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithTracer sets the tracer for update and decoration spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(a *App) {
		if tracer != nil {
			a.tracer = tracer
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(a *App) {
		if m != nil {
			a.metrics = m
		}
	}
}

// WithRuntime runs the app's signal and render effect on rt instead of
// the default runtime.
func WithRuntime(rt *blink.Runtime) Option {
	return func(a *App) {
		if rt != nil {
			a.rt = rt
		}
	}
}

// WithMaxRedecorateDepth caps redecoration recursion.
func WithMaxRedecorateDepth(n int) Option {
	return func(a *App) {
		a.maxDepth = n
	}
}

// WithObserver adds a decoration observer in addition to the metrics sink.
func WithObserver(o bead.Observer) Option {
	return func(a *App) {
		if o != nil {
			a.observers = append(a.observers, o)
		}
	}
}
