// Package sparkle assembles bead pipelines, signals and render functions
// into running apps.
//
// An app owns one signal holding the decorated state. Render runs inside an
// effect, so every successful Update re-renders exactly once. Wire binds a
// surface event to a handler whose result becomes the next update:
//
//	app, err := sparkle.New(sparkle.Config{
//	    Seed:   bead.State{"count": 0},
//	    Beads:  []bead.Func{withCounter},
//	    Render: func(s bead.State) { fmt.Println(s.Int("count", 0)) },
//	    Setup: func(app *sparkle.App) error {
//	        app.Wire("inc", "click", func(s bead.State, _ sparkle.Event) any {
//	            partial, _ := s.Do("increment")
//	            return partial
//	        })
//	        return nil
//	    },
//	}, sparkle.WithSurface(surface))
//	if err != nil {
//	    return err
//	}
//	return app.Start()
//
// # Surfaces
//
// A Surface is whatever hosts the UI: MemorySurface for tests and headless
// use, or the WebSocket surface in pkg/server. Binding the same target and
// event twice replaces the earlier handler.
//
// # Rejected results
//
// Update rejects a nil next state (ErrInvalidUpdateResult) and a wired
// handler result that is not nil, a partial or a slice of partials
// (ErrInvalidWireResult). Both are logged, returned, and leave the current
// state untouched. A failing bead (for example an interface validation)
// aborts the update the same way.
package sparkle
