package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	"go.opentelemetry.io/otel/trace/noop"
)

func newRouter(mw func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(mw)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("item " + chi.URLParam(r, "id")))
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	return r
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			if matches(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matches(m *dto.Metric, labels map[string]string) bool {
	found := 0
	for _, lp := range m.GetLabel() {
		if v, ok := labels[lp.GetName()]; ok {
			if v != lp.GetValue() {
				return false
			}
			found++
		}
	}
	return found == len(labels)
}

func TestPrometheusRecordsRoutePatterns(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newRouter(Prometheus(WithRegistry(reg)))

	for _, path := range []string{"/items/1", "/items/2", "/boom"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := counterValue(t, reg, "sparkle_http_requests_total", map[string]string{"route": "/items/{id}", "status": "200"}); got != 2 {
		t.Errorf("item requests = %v, want 2", got)
	}
	if got := counterValue(t, reg, "sparkle_http_requests_total", map[string]string{"route": "/boom", "status": "500"}); got != 1 {
		t.Errorf("boom requests = %v, want 1", got)
	}
}

func TestPrometheusOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newRouter(Prometheus(
		WithRegistry(reg),
		WithNamespace("app"),
		WithSubsystem("web"),
		WithConstLabels(prometheus.Labels{"instance": "a"}),
		WithBuckets([]float64{0.1, 1}),
	))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/9", nil))

	if got := counterValue(t, reg, "app_web_requests_total", map[string]string{"instance": "a", "route": "/items/{id}"}); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
}

func TestPrometheusPassesResponseThrough(t *testing.T) {
	h := newRouter(Prometheus(WithRegistry(prometheus.NewRegistry())))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/7", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "item 7" {
		t.Errorf("response = %d %q", rec.Code, rec.Body.String())
	}
}

type recordingProvider struct {
	embedded.TracerProvider

	mu    sync.Mutex
	names []string
	spans []*recordingSpan
}

func (p *recordingProvider) Tracer(name string, _ ...trace.TracerOption) trace.Tracer {
	p.mu.Lock()
	p.names = append(p.names, name)
	p.mu.Unlock()
	return &recordingTracer{p: p}
}

type recordingTracer struct {
	embedded.Tracer
	p *recordingProvider
}

func (t *recordingTracer) Start(ctx context.Context, name string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
	s := &recordingSpan{name: name}
	t.p.mu.Lock()
	t.p.spans = append(t.p.spans, s)
	t.p.mu.Unlock()
	return trace.ContextWithSpan(ctx, s), s
}

type recordingSpan struct {
	noop.Span

	name   string
	status codes.Code
	attrs  []attribute.KeyValue
	ended  bool
}

func (s *recordingSpan) SetStatus(code codes.Code, _ string) { s.status = code }

func (s *recordingSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.attrs = append(s.attrs, kv...)
}

func (s *recordingSpan) End(...trace.SpanEndOption) { s.ended = true }

func (s *recordingSpan) attr(key string) (attribute.Value, bool) {
	for _, kv := range s.attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestOpenTelemetrySpans(t *testing.T) {
	tp := &recordingProvider{}
	h := newRouter(OpenTelemetry(WithTracerProvider(tp), WithTracerName("test")))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/3", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	if len(tp.names) != 1 || tp.names[0] != "test" {
		t.Errorf("tracer names = %v", tp.names)
	}
	if len(tp.spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(tp.spans))
	}

	ok, failed := tp.spans[0], tp.spans[1]
	if ok.name != "GET /items/3" || ok.status != codes.Ok || !ok.ended {
		t.Errorf("ok span = %+v", ok)
	}
	if v, _ := ok.attr("http.route"); v.AsString() != "/items/{id}" {
		t.Errorf("http.route = %q", v.AsString())
	}
	if failed.status != codes.Error {
		t.Errorf("failed span status = %v, want Error", failed.status)
	}
	if v, _ := failed.attr("http.status_code"); v.AsInt64() != 500 {
		t.Errorf("http.status_code = %d", v.AsInt64())
	}
}

func TestOpenTelemetrySpanInRequestContext(t *testing.T) {
	tp := &recordingProvider{}
	var seen trace.Span
	h := OpenTelemetry(WithTracerProvider(tp))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = trace.SpanFromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if len(tp.spans) != 1 || seen != trace.Span(tp.spans[0]) {
		t.Errorf("handler saw %v, want the request span", seen)
	}
}

func TestOpenTelemetryFilter(t *testing.T) {
	tp := &recordingProvider{}
	h := newRouter(OpenTelemetry(
		WithTracerProvider(tp),
		WithFilter(func(r *http.Request) bool { return r.URL.Path != "/boom" }),
	))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if len(tp.spans) != 0 {
		t.Errorf("filtered request produced %d spans", len(tp.spans))
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
}
