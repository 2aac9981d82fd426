package sparkle

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/sparkle/pkg/bead"
	"github.com/vango-dev/sparkle/pkg/blink"
)

func counterBead(s bead.State, _ *bead.Pass) (bead.State, error) {
	count := s.Int("count", 0)
	return bead.State{
		"count": count,
		"increment": bead.Action(func(...any) bead.State {
			return bead.State{"count": count + 1}
		}),
	}, nil
}

type renderLog struct {
	states []bead.State
}

func (r *renderLog) render(s bead.State) {
	r.states = append(r.states, s)
}

func newTestApp(t *testing.T, cfg Config, opts ...Option) (*App, *MemorySurface) {
	t.Helper()
	surface := NewMemorySurface()
	opts = append([]Option{WithSurface(surface), WithRuntime(blink.NewRuntime())}, opts...)
	app, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return app, surface
}

func TestNewDecoratesSeedAndRenders(t *testing.T) {
	r := &renderLog{}
	app, _ := newTestApp(t, Config{
		Seed:   bead.State{"count": 4},
		Beads:  []bead.Func{counterBead},
		Render: r.render,
	})

	if len(r.states) != 1 {
		t.Fatalf("render ran %d times on New, want 1", len(r.states))
	}
	if _, ok := app.State().Action("increment"); !ok {
		t.Error("state should be decorated")
	}
	if app.State().Int("count", 0) != 4 {
		t.Errorf("count = %v, want 4", app.State()["count"])
	}
}

func TestNewFailsOnBeadError(t *testing.T) {
	failing := func(bead.State, *bead.Pass) (bead.State, error) {
		return nil, bead.ErrInterfaceValidation
	}
	_, err := New(Config{Beads: []bead.Func{failing}}, WithRuntime(blink.NewRuntime()))
	if !errors.Is(err, bead.ErrInterfaceValidation) {
		t.Errorf("err = %v, want ErrInterfaceValidation", err)
	}
}

func TestUpdateReRendersOnce(t *testing.T) {
	r := &renderLog{}
	app, _ := newTestApp(t, Config{
		Seed:   bead.State{"count": 0},
		Beads:  []bead.Func{counterBead},
		Render: r.render,
	})

	err := app.Update(func(s bead.State) bead.State {
		p, _ := s.Do("increment")
		return s.Merge(p)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(r.states) != 2 {
		t.Fatalf("render ran %d times, want 2", len(r.states))
	}
	if r.states[1].Int("count", 0) != 1 {
		t.Errorf("rendered count = %v, want 1", r.states[1]["count"])
	}
}

func TestUpdateRejectsNil(t *testing.T) {
	var logs bytes.Buffer
	r := &renderLog{}
	app, _ := newTestApp(t, Config{
		Seed:   bead.State{"count": 7},
		Beads:  []bead.Func{counterBead},
		Render: r.render,
	}, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	before := app.State()
	err := app.Update(func(bead.State) bead.State { return nil })
	if !errors.Is(err, ErrInvalidUpdateResult) {
		t.Fatalf("err = %v, want ErrInvalidUpdateResult", err)
	}
	if app.State().Int("count", 0) != 7 || len(app.State()) != len(before) {
		t.Error("state should be unchanged")
	}
	if len(r.states) != 1 {
		t.Errorf("render ran %d times, want 1 (no re-render)", len(r.states))
	}
	if !strings.Contains(logs.String(), "E101") {
		t.Errorf("rejection should be logged with its code:\n%s", logs.String())
	}
}

func TestUpdateKeepsStateOnDecorationFailure(t *testing.T) {
	guard := func(s bead.State, _ *bead.Pass) (bead.State, error) {
		if s.Int("count", 0) > 1 {
			return nil, bead.ErrInterfaceValidation.WithDetail("count <= 1")
		}
		return nil, nil
	}
	r := &renderLog{}
	app, _ := newTestApp(t, Config{
		Seed:   bead.State{"count": 1},
		Beads:  []bead.Func{counterBead, guard},
		Render: r.render,
	})

	err := app.Update(func(s bead.State) bead.State { return s.Merge(bead.State{"count": 2}) })
	if !errors.Is(err, bead.ErrInterfaceValidation) {
		t.Fatalf("err = %v, want ErrInterfaceValidation", err)
	}
	if app.State().Int("count", 0) != 1 {
		t.Errorf("count = %v, want last good value 1", app.State()["count"])
	}
	if len(r.states) != 1 {
		t.Errorf("render ran %d times, want 1", len(r.states))
	}
}

func TestUpdateCallsLogAction(t *testing.T) {
	calls := 0
	logBead := func(bead.State, *bead.Pass) (bead.State, error) {
		return bead.State{"log": bead.Action(func(...any) bead.State {
			calls++
			return nil
		})}, nil
	}
	app, _ := newTestApp(t, Config{Beads: []bead.Func{logBead}})

	if err := app.Update(func(s bead.State) bead.State { return s }); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("log called %d times, want 1", calls)
	}
}

func TestWireArrayMerge(t *testing.T) {
	app, surface := newTestApp(t, Config{Seed: bead.State{}})
	app.Wire("btn", "click", func(bead.State, Event) any {
		return []bead.State{{"a": 1}, {"b": 2}, {"a": 3}}
	})

	if err := surface.Fire("btn", "click", nil); err != nil {
		t.Fatal(err)
	}
	s := app.State()
	if s["a"] != 3 || s["b"] != 2 {
		t.Errorf("state = %v, want a=3 b=2", s)
	}
}

func TestWireResults(t *testing.T) {
	tests := []struct {
		name    string
		result  any
		wantErr error
		want    bead.State
	}{
		{"nil is no change", nil, nil, bead.State{"x": 0}},
		{"single partial", bead.State{"x": 1}, nil, bead.State{"x": 1}},
		{"plain map", map[string]any{"x": 2}, nil, bead.State{"x": 2}},
		{"map slice", []map[string]any{{"x": 3}, {"y": 1}}, nil, bead.State{"x": 3, "y": 1}},
		{"any slice skips non-maps", []any{bead.State{"x": 4}, "junk", map[string]any{"y": 2}}, nil, bead.State{"x": 4, "y": 2}},
		{"string rejected", "nope", ErrInvalidWireResult, bead.State{"x": 0}},
		{"number rejected", 42, ErrInvalidWireResult, bead.State{"x": 0}},
		{"bool rejected", true, ErrInvalidWireResult, bead.State{"x": 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &renderLog{}
			app, surface := newTestApp(t, Config{Seed: bead.State{"x": 0}, Render: r.render})
			app.Wire("t", "e", func(bead.State, Event) any { return tt.result })

			err := surface.Fire("t", "e", nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}

			for k, v := range tt.want {
				if app.State()[k] != v {
					t.Errorf("%s = %v, want %v", k, app.State()[k], v)
				}
			}
			wantRenders := 2
			if tt.result == nil || tt.wantErr != nil {
				wantRenders = 1
			}
			if len(r.states) != wantRenders {
				t.Errorf("renders = %d, want %d", len(r.states), wantRenders)
			}
		})
	}
}

func TestWireHandlerReceivesEvent(t *testing.T) {
	app, surface := newTestApp(t, Config{Seed: bead.State{"text": ""}})
	var got Event
	app.Wire("input", "change", func(s bead.State, e Event) any {
		got = e
		return bead.State{"text": e.Payload}
	})

	if err := surface.Fire("input", "change", "hello"); err != nil {
		t.Fatal(err)
	}
	if got.Target != "input" || got.Name != "change" || got.Payload != "hello" {
		t.Errorf("event = %+v", got)
	}
	if app.State().String("text", "") != "hello" {
		t.Errorf("text = %v", app.State()["text"])
	}
}

func TestStartRendersThenSetup(t *testing.T) {
	var order []string
	app, surface := newTestApp(t, Config{
		Seed:   bead.State{"count": 0},
		Beads:  []bead.Func{counterBead},
		Render: func(bead.State) { order = append(order, "render") },
		Setup: func(app *App) error {
			order = append(order, "setup")
			app.Wire("inc", "click", func(s bead.State, _ Event) any {
				p, _ := s.Do("increment")
				return p
			})
			return nil
		},
	})
	order = nil

	if err := Start(app); err != nil {
		t.Fatal(err)
	}
	if strings.Join(order, ",") != "render,setup" {
		t.Errorf("order = %v, want render,setup", order)
	}
	if !surface.Bound("inc", "click") {
		t.Error("setup should wire inc/click")
	}
	if !app.Started() {
		t.Error("Started() should be true")
	}

	if err := app.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start err = %v, want ErrAlreadyStarted", err)
	}
	if strings.Join(order, ",") != "render,setup" {
		t.Errorf("second Start should not render or setup again: %v", order)
	}
}

func TestRenderEffectTracksSignal(t *testing.T) {
	r := &renderLog{}
	app, _ := newTestApp(t, Config{Seed: bead.State{"v": 1}, Render: r.render})

	app.Signal().Set(bead.State{"v": 2})
	if len(r.states) != 2 || r.states[1]["v"] != 2 {
		t.Errorf("writing the signal directly should re-render, got %v", r.states)
	}
}
