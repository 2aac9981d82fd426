// Package middleware provides HTTP middleware for the sparkle server.
//
// # Prometheus Metrics
//
// Prometheus counts requests and times them by route pattern:
//
//	srv := server.New(cfg, server.WithMiddleware(
//	    middleware.Prometheus(middleware.WithRegistry(reg)),
//	))
//
// Metrics collected:
//   - sparkle_http_requests_total{route,status}
//   - sparkle_http_request_duration_seconds{route}
//
// Routes are the chi patterns ("/ws", "/state", "/*"), never raw paths,
// so label cardinality stays bounded.
//
// # OpenTelemetry
//
// OpenTelemetry starts a server span per request using the global tracer
// provider:
//
//	srv := server.New(cfg, server.WithMiddleware(
//	    middleware.OpenTelemetry(middleware.WithTracerName("my-app")),
//	))
//
// Handlers reach the span with trace.SpanFromContext(r.Context()).
package middleware
