// Package bead composes sparkle state out of small transformer functions.
//
// A bead receives the state decorated so far and returns a partial state.
// Compose folds a pipeline of beads over a seed: each partial is shallow
// merged into the accumulator and the bead's keys win on conflict.
//
//	withCounter := bead.New("counter", func(s bead.State, _ *bead.Pass) (bead.State, error) {
//	    count := s.Int("count", 0)
//	    return bead.State{
//	        "count": count,
//	        "increment": bead.Action(func(...any) bead.State {
//	            return bead.State{"count": count + 1}
//	        }),
//	    }, nil
//	})
//
//	state, err := bead.Compose(bead.State{"count": 0}, withCounter)
//
// Beads must read existing fields defensively ("use the current value if
// present, else a default") so that re-running the pipeline over an already
// decorated state converges. They must not mutate the state they receive.
//
// # Redecoration
//
// Pass.Redecorate runs the whole pipeline again over another state. The
// recursion is capped (WithMaxDepth); exceeding it aborts the pass with
// ErrRedecorateDepth.
//
// # Collisions
//
// Beads built with New log a warning (code E103) when their partial replaces
// an existing key with a different value. Collisions never stop the
// pipeline: the later bead always wins.
package bead
