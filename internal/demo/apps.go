package demo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	sparkerrors "github.com/vango-dev/sparkle/internal/errors"
	"github.com/vango-dev/sparkle/pkg/bead"
	"github.com/vango-dev/sparkle/pkg/beads"
	"github.com/vango-dev/sparkle/pkg/persist"
	"github.com/vango-dev/sparkle/pkg/sparkle"
)

// ErrUnknownApp is returned by Build for a name with no registered app.
var ErrUnknownApp = sparkerrors.New("E401")

// Host is what a demo app runs against: a surface that binds events,
// displays views, runs work on its event loop and knows its targets.
type Host interface {
	sparkle.Surface
	sparkle.Display
	sparkle.Scheduler
	beads.TargetSet
	Declare(targets ...string)
}

// Env carries what Build needs besides the app name.
type Env struct {
	Host Host

	// Store enables persistence for apps that support it. Optional.
	Store persist.Store

	// PersistOptions are passed to every persister an app creates.
	PersistOptions []persist.Option

	// Options are passed to sparkle.New after the host surface.
	Options []sparkle.Option

	// Inspect, when set, receives every decorated state.
	Inspect func(bead.State)

	Logger *slog.Logger

	// TickInterval is the timer app's tick. Default: one second.
	TickInterval time.Duration
}

func (e Env) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default().With("component", "demo")
}

// Instance is a built app plus the resources it owns.
type Instance struct {
	Name string
	App  *sparkle.App

	closers []func(context.Context) error
}

// Close releases the app's resources, flushing persisted state.
func (i *Instance) Close(ctx context.Context) error {
	var errs []error
	for j := len(i.closers) - 1; j >= 0; j-- {
		if err := i.closers[j](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	i.closers = nil
	return errors.Join(errs...)
}

func (i *Instance) onClose(fn func(context.Context) error) {
	i.closers = append(i.closers, fn)
}

// Builder assembles an app. It does not start it.
type Builder func(env Env) (*Instance, error)

var registry = map[string]Builder{
	"counter":  buildCounter,
	"todo":     buildTodo,
	"toggle":   buildToggle,
	"timer":    buildTimer,
	"vote":     buildVote,
	"carousel": buildCarousel,
}

// Names returns the registered app names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build assembles the named app against env.Host.
func Build(name string, env Env) (*Instance, error) {
	build, ok := registry[name]
	if !ok {
		return nil, ErrUnknownApp.WithDetail("%q (available: %s)", name, strings.Join(Names(), ", "))
	}
	if env.Host == nil {
		env.Host = sparkle.NewMemorySurface()
	}
	inst, err := build(env)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	inst.Name = name
	return inst, nil
}

// Run builds and starts the named app.
func Run(name string, env Env) (*Instance, error) {
	inst, err := Build(name, env)
	if err != nil {
		return nil, err
	}
	if err := inst.App.Start(); err != nil {
		inst.Close(context.Background())
		return nil, err
	}
	return inst, nil
}

// assemble declares targets, appends the shared trailing beads and
// creates the app.
func assemble(env Env, inst *Instance, targets []string, cfg sparkle.Config) error {
	env.Host.Declare(targets...)

	cfg.Beads = append(cfg.Beads, beads.Targets(env.Host, targets...))
	if env.Inspect != nil {
		cfg.Beads = append(cfg.Beads, beads.Inspector(env.Inspect))
	}

	opts := append([]sparkle.Option{sparkle.WithSurface(env.Host)}, env.Options...)
	app, err := sparkle.New(cfg, opts...)
	if err != nil {
		return err
	}
	inst.App = app
	return nil
}

func persister(env Env, inst *Instance, key string, fields ...string) []bead.Func {
	if env.Store == nil {
		return nil
	}
	opts := append([]persist.Option{persist.Fields(fields...)}, env.PersistOptions...)
	p := persist.NewPersister(env.Store, key, opts...)
	inst.onClose(p.Close)
	return []bead.Func{p.Bead()}
}

func timeline(env Env, inst *Instance, key string) []bead.Func {
	if env.Store == nil {
		return nil
	}
	p := persist.NewTimeline(env.Store, key, persist.DefaultTimelineMax, env.PersistOptions...)
	inst.onClose(p.Close)
	return []bead.Func{p.Bead()}
}

func buildCounter(env Env) (*Instance, error) {
	inst := &Instance{}
	pipeline := append(timeline(env, inst, "sparkle:counter"),
		beads.UndoRedo(),
		Counter,
		CountToggles,
		beads.Logger("log"),
	)

	err := assemble(env, inst, []string{"countDisplay", "toggleCount", "inc", "dec", "undo", "redo"}, sparkle.Config{
		Seed:  bead.State{"count": 0},
		Beads: pipeline,
		Render: func(s bead.State) {
			env.Host.Show(sparkle.View{
				"countDisplay": s.Int("count", 0),
				"toggleCount":  s.Int("toggleCount", 0),
				"undo":         len(s.States("past")) > 0,
				"redo":         len(s.States("future")) > 0,
			})
		},
		Setup: func(app *sparkle.App) error {
			app.Wire("inc", "click", func(s bead.State, _ sparkle.Event) any {
				return []bead.State{do(s, "checkpoint"), do(s, "increment"), do(s, "countToggle")}
			})
			app.Wire("dec", "click", func(s bead.State, _ sparkle.Event) any {
				return []bead.State{do(s, "checkpoint"), do(s, "decrement"), do(s, "countToggle")}
			})
			app.Wire("undo", "click", func(s bead.State, _ sparkle.Event) any {
				return do(s, "undo")
			})
			app.Wire("redo", "click", func(s bead.State, _ sparkle.Event) any {
				return do(s, "redo")
			})
			return nil
		},
	})
	if err != nil {
		inst.Close(context.Background())
		return nil, err
	}
	return inst, nil
}

func buildTodo(env Env) (*Instance, error) {
	inst := &Instance{}
	pipeline := append(persister(env, inst, "sparkle:todos", "todos", "newText"),
		Todos,
		NewText,
		beads.Requires("todos", "todos", "newText"),
	)

	err := assemble(env, inst, []string{"newTodo", "todoList"}, sparkle.Config{
		Seed:  bead.State{"todos": []Todo{}, "newText": ""},
		Beads: pipeline,
		Render: func(s bead.State) {
			env.Host.Show(sparkle.View{
				"todoList": TodosOf(s),
				"newTodo":  s.String("newText", ""),
			})
		},
		Setup: func(app *sparkle.App) error {
			app.Wire("newTodo", "input", func(_ bead.State, e sparkle.Event) any {
				return bead.State{"newText": textOf(e.Payload)}
			})
			app.Wire("newTodo", "keypress", func(s bead.State, e sparkle.Event) any {
				text := strings.TrimSpace(s.String("newText", ""))
				if keyOf(e.Payload) != "Enter" || text == "" {
					return nil
				}
				return []bead.State{do(s, "addTodo", text), {"newText": ""}}
			})
			app.Wire("todoList", "toggle", func(s bead.State, e sparkle.Event) any {
				i, ok := intOf(e.Payload)
				if !ok {
					return nil
				}
				return do(s, "toggleTodo", i)
			})
			app.Wire("todoList", "remove", func(s bead.State, e sparkle.Event) any {
				i, ok := intOf(e.Payload)
				if !ok {
					return nil
				}
				return do(s, "removeTodo", i)
			})
			return nil
		},
	})
	if err != nil {
		inst.Close(context.Background())
		return nil, err
	}
	return inst, nil
}

func buildToggle(env Env) (*Instance, error) {
	inst := &Instance{}
	err := assemble(env, inst, []string{"label", "toggleButton"}, sparkle.Config{
		Seed: bead.State{"label": "Lights"},
		Beads: []bead.Func{
			Toggle,
			CountToggles,
			beads.History(20),
			beads.Logger("log"),
		},
		Render: func(s bead.State) {
			state, button := "OFF", "Turn On"
			if s.Bool("isOn", false) {
				state, button = "ON", "Turn Off"
			}
			env.Host.Show(sparkle.View{
				"label":        s.String("label", "") + ": " + state,
				"toggleButton": button,
			})
		},
		Setup: func(app *sparkle.App) error {
			app.Wire("toggleButton", "click", func(s bead.State, _ sparkle.Event) any {
				return []bead.State{do(s, "toggle"), do(s, "countToggle")}
			})
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return inst, nil
}

func buildVote(env Env) (*Instance, error) {
	inst := &Instance{}
	pipeline := append(persister(env, inst, "sparkle:votes", "upvotes", "downvotes"), Votes)

	err := assemble(env, inst, []string{"voteCount", "voteTotal", "votePercent", "upBtn", "downBtn"}, sparkle.Config{
		Seed:  bead.State{"upvotes": 0, "downvotes": 0},
		Beads: pipeline,
		Render: func(s bead.State) {
			env.Host.Show(sparkle.View{
				"voteCount":   s.Int("voteCount", 0),
				"voteTotal":   s.Int("voteTotal", 0),
				"votePercent": s.Int("votePercent", 0),
			})
		},
		Setup: func(app *sparkle.App) error {
			app.Wire("upBtn", "click", func(s bead.State, _ sparkle.Event) any {
				return do(s, "upvote")
			})
			app.Wire("downBtn", "click", func(s bead.State, _ sparkle.Event) any {
				return do(s, "downvote")
			})
			return nil
		},
	})
	if err != nil {
		inst.Close(context.Background())
		return nil, err
	}
	return inst, nil
}

func buildCarousel(env Env) (*Instance, error) {
	inst := &Instance{}
	err := assemble(env, inst, []string{"display", "prev", "next"}, sparkle.Config{
		Seed:  bead.State{"index": 0, "slides": []string{"One", "Two", "Three"}},
		Beads: []bead.Func{Carousel},
		Render: func(s bead.State) {
			slides := stringsOf(s["slides"])
			text := ""
			if i := s.Int("index", 0); i >= 0 && i < len(slides) {
				text = slides[i]
			}
			env.Host.Show(sparkle.View{"display": text})
		},
		Setup: func(app *sparkle.App) error {
			app.Wire("next", "click", func(s bead.State, _ sparkle.Event) any {
				return do(s, "next")
			})
			app.Wire("prev", "click", func(s bead.State, _ sparkle.Event) any {
				return do(s, "prev")
			})
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return inst, nil
}

func textOf(payload any) string {
	switch p := payload.(type) {
	case string:
		return p
	case map[string]any:
		s, _ := p["value"].(string)
		return s
	}
	return ""
}

func keyOf(payload any) string {
	switch p := payload.(type) {
	case string:
		return p
	case map[string]any:
		s, _ := p["key"].(string)
		return s
	}
	return ""
}
