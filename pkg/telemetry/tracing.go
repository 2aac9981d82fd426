package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name sparkle spans are created under.
const TracerName = "sparkle"

// Span names.
const (
	SpanDecorate = "sparkle.decorate"
	SpanUpdate   = "sparkle.update"
)

// Tracer returns the sparkle tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
