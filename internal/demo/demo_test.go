package demo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/vango-dev/sparkle/pkg/bead"
	"github.com/vango-dev/sparkle/pkg/persist"
	"github.com/vango-dev/sparkle/pkg/sparkle"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEnv(host Host) Env {
	return Env{
		Host:    host,
		Logger:  quietLogger(),
		Options: []sparkle.Option{sparkle.WithLogger(quietLogger())},
	}
}

func run(t *testing.T, name string, env Env) *Instance {
	t.Helper()
	inst, err := Run(name, env)
	if err != nil {
		t.Fatalf("Run(%s): %v", name, err)
	}
	t.Cleanup(func() {
		if err := inst.Close(context.Background()); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return inst
}

func fire(t *testing.T, host *sparkle.MemorySurface, target, event string, payload any) {
	t.Helper()
	if err := host.Fire(target, event, payload); err != nil {
		t.Fatalf("Fire(%s, %s): %v", target, event, err)
	}
}

// A counter app fires increment events and reads back the count.
func TestEndToEndCounter(t *testing.T) {
	host := sparkle.NewMemorySurface()
	app, err := sparkle.New(sparkle.Config{
		Seed:  bead.State{"count": 0},
		Beads: []bead.Func{Counter},
		Setup: func(app *sparkle.App) error {
			app.Wire("inc", "click", func(s bead.State, _ sparkle.Event) any {
				return do(s, "increment")
			})
			return nil
		},
	}, sparkle.WithSurface(host), sparkle.WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if err := sparkle.Start(app); err != nil {
		t.Fatal(err)
	}

	fire(t, host, "inc", "click", nil)
	if got := app.State().Int("count", -1); got != 1 {
		t.Fatalf("count = %d after one click, want 1", got)
	}
	fire(t, host, "inc", "click", nil)
	fire(t, host, "inc", "click", nil)
	if got := app.State().Int("count", -1); got != 3 {
		t.Fatalf("count = %d after three clicks, want 3", got)
	}
}

func TestEndToEndTodo(t *testing.T) {
	app, err := sparkle.New(sparkle.Config{
		Seed:  bead.State{"todos": []Todo{}},
		Beads: []bead.Func{Todos},
	}, sparkle.WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	apply := func(action string, args ...any) {
		t.Helper()
		if err := app.Update(func(s bead.State) bead.State {
			return s.Merge(do(s, action, args...))
		}); err != nil {
			t.Fatal(err)
		}
	}

	apply("addTodo", "buy milk")
	if diff := cmp.Diff([]Todo{{Text: "buy milk", Done: false}}, TodosOf(app.State())); diff != "" {
		t.Fatalf("after addTodo (-want +got):\n%s", diff)
	}

	apply("toggleTodo", 0)
	if !TodosOf(app.State())[0].Done {
		t.Fatal("toggleTodo(0) should mark the todo done")
	}

	apply("removeTodo", 0)
	if diff := cmp.Diff([]Todo{}, TodosOf(app.State())); diff != "" {
		t.Fatalf("after removeTodo (-want +got):\n%s", diff)
	}
}

func TestTodosOfConvertsRestoredList(t *testing.T) {
	s := bead.State{"todos": []any{
		map[string]any{"text": "a", "done": true},
		"junk",
		map[string]any{"text": "b"},
	}}
	want := []Todo{{Text: "a", Done: true}, {Text: "b"}}
	if diff := cmp.Diff(want, TodosOf(s)); diff != "" {
		t.Errorf("TodosOf (-want +got):\n%s", diff)
	}
	if got := TodosOf(bead.State{}); got == nil || len(got) != 0 {
		t.Errorf("missing todos = %#v, want empty list", got)
	}
}

func TestBuildUnknownApp(t *testing.T) {
	_, err := Build("nope", testEnv(sparkle.NewMemorySurface()))
	if !errors.Is(err, ErrUnknownApp) {
		t.Errorf("err = %v, want ErrUnknownApp", err)
	}
}

func TestNames(t *testing.T) {
	want := []string{"carousel", "counter", "timer", "todo", "toggle", "vote"}
	if diff := cmp.Diff(want, Names()); diff != "" {
		t.Errorf("Names (-want +got):\n%s", diff)
	}
}

func TestEveryAppStartsAndRenders(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			host := sparkle.NewMemorySurface()
			inst := run(t, name, testEnv(host))
			if inst.Name != name {
				t.Errorf("Name = %q", inst.Name)
			}
			if host.LastView() == nil {
				t.Error("app should render on start")
			}
			el := inst.App.State().Map("el")
			for target, v := range el {
				if v == nil {
					t.Errorf("target %q not provided by host", target)
				}
			}
		})
	}
}

func TestCounterApp(t *testing.T) {
	host := sparkle.NewMemorySurface()
	run(t, "counter", testEnv(host))

	fire(t, host, "inc", "click", nil)
	fire(t, host, "inc", "click", nil)
	fire(t, host, "dec", "click", nil)

	view := host.LastView()
	if view["countDisplay"] != 1 || view["toggleCount"] != 3 {
		t.Fatalf("view = %v, want count 1 and 3 toggles", view)
	}

	fire(t, host, "undo", "click", nil)
	if view := host.LastView(); view["countDisplay"] != 2 || view["redo"] != true {
		t.Errorf("after undo view = %v", view)
	}
	fire(t, host, "redo", "click", nil)
	if view := host.LastView(); view["countDisplay"] != 1 {
		t.Errorf("after redo view = %v", view)
	}
}

func TestCounterTimelinePersists(t *testing.T) {
	ctx := context.Background()
	store := persist.NewMemoryStore()
	env := testEnv(sparkle.NewMemorySurface())
	env.Store = store
	env.PersistOptions = []persist.Option{persist.SaveDelay(time.Hour), persist.WithLogger(quietLogger())}

	first, err := Run("counter", env)
	if err != nil {
		t.Fatal(err)
	}
	host := env.Host.(*sparkle.MemorySurface)
	fire(t, host, "inc", "click", nil)
	fire(t, host, "inc", "click", nil)
	if err := first.Close(ctx); err != nil {
		t.Fatal(err)
	}

	env.Host = sparkle.NewMemorySurface()
	second := run(t, "counter", env)
	if got := second.App.State().Int("count", -1); got != 2 {
		t.Errorf("restored count = %d, want 2", got)
	}
	if got := len(second.App.State().States("past")); got != 2 {
		t.Errorf("restored past has %d entries, want 2", got)
	}
}

func TestTodoApp(t *testing.T) {
	host := sparkle.NewMemorySurface()
	inst := run(t, "todo", testEnv(host))

	fire(t, host, "newTodo", "input", map[string]any{"value": "  buy milk "})
	fire(t, host, "newTodo", "keypress", map[string]any{"key": "a"})
	if len(TodosOf(inst.App.State())) != 0 {
		t.Fatal("only Enter should add a todo")
	}
	fire(t, host, "newTodo", "keypress", map[string]any{"key": "Enter"})
	fire(t, host, "todoList", "toggle", 0.0)

	want := []Todo{{Text: "buy milk", Done: true}}
	if diff := cmp.Diff(want, host.LastView()["todoList"]); diff != "" {
		t.Errorf("rendered todos (-want +got):\n%s", diff)
	}
	if host.LastView()["newTodo"] != "" {
		t.Errorf("draft should be cleared, got %v", host.LastView()["newTodo"])
	}

	fire(t, host, "todoList", "remove", map[string]any{"index": 0.0})
	if len(TodosOf(inst.App.State())) != 0 {
		t.Error("remove should empty the list")
	}
}

func TestTodoAppPersists(t *testing.T) {
	ctx := context.Background()
	store := persist.NewMemoryStore()
	store.Save(ctx, "sparkle:todos", []byte(`{"todos":[{"text":"saved","done":false}],"newText":"draft"}`))

	env := testEnv(sparkle.NewMemorySurface())
	env.Store = store
	env.PersistOptions = []persist.Option{persist.SaveDelay(time.Hour), persist.WithLogger(quietLogger())}
	inst := run(t, "todo", env)

	want := []Todo{{Text: "saved"}}
	if diff := cmp.Diff(want, TodosOf(inst.App.State())); diff != "" {
		t.Errorf("restored todos (-want +got):\n%s", diff)
	}
	if inst.App.State().String("newText", "") != "draft" {
		t.Errorf("newText = %v", inst.App.State()["newText"])
	}
}

func TestToggleApp(t *testing.T) {
	host := sparkle.NewMemorySurface()
	inst := run(t, "toggle", testEnv(host))

	if got := host.LastView()["label"]; got != "Lights: OFF" {
		t.Errorf("label = %v", got)
	}
	fire(t, host, "toggleButton", "click", nil)
	view := host.LastView()
	if view["label"] != "Lights: ON" || view["toggleButton"] != "Turn Off" {
		t.Errorf("view = %v", view)
	}
	if inst.App.State().Int("toggleCount", 0) != 1 {
		t.Errorf("toggleCount = %v", inst.App.State()["toggleCount"])
	}
	if len(inst.App.State().States("history")) != 2 {
		t.Errorf("history = %v", inst.App.State()["history"])
	}
}

func TestVoteApp(t *testing.T) {
	host := sparkle.NewMemorySurface()
	run(t, "vote", testEnv(host))

	fire(t, host, "upBtn", "click", nil)
	fire(t, host, "upBtn", "click", nil)
	fire(t, host, "downBtn", "click", nil)

	want := sparkle.View{"voteCount": 2, "voteTotal": 3, "votePercent": 67}
	if diff := cmp.Diff(want, host.LastView()); diff != "" {
		t.Errorf("view (-want +got):\n%s", diff)
	}
}

func TestCarouselApp(t *testing.T) {
	host := sparkle.NewMemorySurface()
	run(t, "carousel", testEnv(host))

	fire(t, host, "prev", "click", nil)
	if got := host.LastView()["display"]; got != "Three" {
		t.Errorf("prev from first = %v, want wrap to Three", got)
	}
	fire(t, host, "next", "click", nil)
	fire(t, host, "next", "click", nil)
	if got := host.LastView()["display"]; got != "Two" {
		t.Errorf("display = %v, want Two", got)
	}
}

func TestTimerApp(t *testing.T) {
	host := sparkle.NewMemorySurface()
	env := testEnv(host)
	env.TickInterval = 2 * time.Millisecond
	inst := run(t, "timer", env)

	fire(t, host, "start", "click", nil)
	fire(t, host, "start", "click", nil)

	deadline := time.Now().Add(2 * time.Second)
	for inst.App.State().Int("seconds", 0) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("timer did not tick")
		}
		time.Sleep(time.Millisecond)
	}

	fire(t, host, "reset", "click", nil)
	if got := inst.App.State().Int("seconds", -1); got != 0 {
		t.Errorf("seconds after reset = %d, want 0", got)
	}
	time.Sleep(10 * time.Millisecond)
	if got := inst.App.State().Int("seconds", -1); got != 0 {
		t.Errorf("timer kept ticking after reset: %d", got)
	}
}

func TestIntOf(t *testing.T) {
	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{3, 3, true},
		{int64(4), 4, true},
		{2.0, 2, true},
		{2.5, 0, false},
		{map[string]any{"index": 1.0}, 1, true},
		{"1", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := intOf(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("intOf(%v) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
