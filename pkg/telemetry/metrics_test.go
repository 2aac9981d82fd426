package telemetry

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/sparkle/pkg/bead"
	"github.com/vango-dev/sparkle/pkg/persist"
	"github.com/vango-dev/sparkle/pkg/sparkle"
)

var (
	_ bead.Observer        = (*Collector)(nil)
	_ sparkle.Metrics      = (*Collector)(nil)
	_ persist.SaveObserver = (*Collector)(nil)
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestCollectorObservations(t *testing.T) {
	c := New()

	c.ObserveDecoration(0, time.Millisecond, nil)
	c.ObserveDecoration(1, time.Millisecond, errors.New("boom"))
	c.ObserveCollision("counter", []string{"a", "b"})
	c.ObserveUpdate("applied")
	c.ObserveUpdate("applied")
	c.ObserveWire("inc", "click", "rejected")
	c.ObserveSave("saved")
	c.ClientConnected()
	c.ClientConnected()
	c.ClientDisconnected()

	if v := counterValue(t, c.decorations.WithLabelValues("0", "ok")); v != 1 {
		t.Errorf("decorations{0,ok} = %v, want 1", v)
	}
	if v := counterValue(t, c.decorations.WithLabelValues("1", "error")); v != 1 {
		t.Errorf("decorations{1,error} = %v, want 1", v)
	}
	if n := histogramCount(t, c.decorationDuration); n != 2 {
		t.Errorf("duration samples = %d, want 2", n)
	}
	if v := counterValue(t, c.collisions.WithLabelValues("counter")); v != 2 {
		t.Errorf("collisions = %v, want one per key", v)
	}
	if v := counterValue(t, c.updates.WithLabelValues("applied")); v != 2 {
		t.Errorf("updates = %v, want 2", v)
	}
	if v := counterValue(t, c.wireEvents.WithLabelValues("inc", "click", "rejected")); v != 1 {
		t.Errorf("wire events = %v, want 1", v)
	}
	if v := counterValue(t, c.saves.WithLabelValues("saved")); v != 1 {
		t.Errorf("saves = %v, want 1", v)
	}
	if v := gaugeValue(t, c.clients); v != 1 {
		t.Errorf("clients = %v, want 1", v)
	}
}

func TestCollectorsAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.ObserveUpdate("applied")
	if v := counterValue(t, b.updates.WithLabelValues("applied")); v != 0 {
		t.Errorf("collectors should not share a registry, got %v", v)
	}
}

func TestCollectorOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(
		WithRegistry(reg),
		WithNamespace("app"),
		WithSubsystem("ui"),
		WithConstLabels(prometheus.Labels{"instance": "test"}),
		WithBuckets([]float64{0.1, 1}),
	)
	c.ObserveUpdate("applied")

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "app_ui_updates_total" {
			found = true
			labels := f.GetMetric()[0].GetLabel()
			var names []string
			for _, l := range labels {
				names = append(names, l.GetName()+"="+l.GetValue())
			}
			if !strings.Contains(strings.Join(names, ","), "instance=test") {
				t.Errorf("const label missing: %v", names)
			}
		}
	}
	if !found {
		t.Error("app_ui_updates_total not registered on the given registry")
	}
}

func TestHandler(t *testing.T) {
	c := New()
	c.ObserveWire("btn", "click", "applied")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	want := `sparkle_wire_events_total{event="click",result="applied",target="btn"} 1`
	if !strings.Contains(string(body), want) {
		t.Errorf("metrics output missing %q:\n%s", want, body)
	}
}

func TestAppReportsToCollector(t *testing.T) {
	c := New()
	app, err := sparkle.New(sparkle.Config{
		Seed: bead.State{"n": 0},
		Beads: []bead.Func{bead.New("counter", func(s bead.State, _ *bead.Pass) (bead.State, error) {
			return bead.State{"n": s.Int("n", 0)}, nil
		})},
	}, sparkle.WithMetrics(c))
	if err != nil {
		t.Fatal(err)
	}

	if err := app.Update(func(bead.State) bead.State { return nil }); err == nil {
		t.Fatal("expected rejection")
	}
	if err := app.Update(func(s bead.State) bead.State { return s.Merge(bead.State{"n": 1}) }); err != nil {
		t.Fatal(err)
	}

	if v := counterValue(t, c.updates.WithLabelValues("rejected")); v != 1 {
		t.Errorf("rejected = %v, want 1", v)
	}
	if v := counterValue(t, c.updates.WithLabelValues("applied")); v != 1 {
		t.Errorf("applied = %v, want 1", v)
	}
	if v := counterValue(t, c.decorations.WithLabelValues("0", "ok")); v != 2 {
		t.Errorf("decorations = %v, want 2 (seed and update)", v)
	}
}
