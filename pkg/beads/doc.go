// Package beads holds reusable beads: counters, flags, loggers, history,
// undo/redo, interface checks, surface targets and state inspectors.
//
// Every bead is built with bead.New, so each one logs its input and output
// at debug level and reports key collisions under its own name.
//
//	app, err := sparkle.New(sparkle.Config{
//	    Seed: bead.State{},
//	    Beads: []bead.Func{
//	        beads.Number("count", 0, 1),
//	        beads.Flag("open"),
//	        beads.Logger("log"),
//	    },
//	})
//
// Actions injected by these beads return partial states. Callers merge
// them, or return them from a wired handler.
package beads
