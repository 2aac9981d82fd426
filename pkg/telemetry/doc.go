// Package telemetry exports sparkle metrics to Prometheus and names the
// OpenTelemetry spans sparkle emits.
//
// A Collector implements bead.Observer, sparkle.Metrics and
// persist.SaveObserver, so one value instruments a whole app:
//
//	reg := prometheus.NewRegistry()
//	metrics := telemetry.New(telemetry.WithRegistry(reg))
//
//	app, err := sparkle.New(cfg, sparkle.WithMetrics(metrics))
//	p := persist.NewPersister(store, "todos", persist.WithObserver(metrics))
//
//	http.Handle("/metrics", metrics.Handler())
//
// # Metrics
//
//   - sparkle_decorations_total{depth,result}
//   - sparkle_decoration_duration_seconds
//   - sparkle_collisions_total{bead}
//   - sparkle_updates_total{result}
//   - sparkle_wire_events_total{target,event,result}
//   - sparkle_persist_saves_total{result}
//   - sparkle_clients
//
// # Tracing
//
// Decoration passes run in a "sparkle.decorate" span and updates in a
// "sparkle.update" span, both from the tracer returned by Tracer. Install
// a provider with otel.SetTracerProvider to export them.
package telemetry
