package beads

import (
	"github.com/vango-dev/sparkle/pkg/bead"
)

// History appends a snapshot of every pass to "history", keeping at most
// max entries. Snapshots leave out actions and the history, el and log keys.
func History(max int) bead.Func {
	if max <= 0 {
		max = 50
	}
	return bead.New("history", func(s bead.State, _ *bead.Pass) (bead.State, error) {
		prev := s.States("history")
		history := make([]bead.State, 0, len(prev)+1)
		history = append(history, prev...)
		history = append(history, snapshot(s, "history", "el", "log"))
		if len(history) > max {
			history = history[len(history)-max:]
		}
		return bead.State{"history": history}, nil
	}, bead.Outputs("history"))
}

// UndoRedo keeps "past" and "future" stacks and injects checkpoint, undo
// and redo actions. Call checkpoint before a change worth undoing.
//
// Place it early in the pipeline so snapshots see the fields of interest.
func UndoRedo() bead.Func {
	return bead.New("undoRedo", func(s bead.State, _ *bead.Pass) (bead.State, error) {
		past := s.States("past")
		future := s.States("future")
		current := snapshot(s, "past", "future")

		return bead.State{
			"past":   past,
			"future": future,
			"checkpoint": bead.Action(func(...any) bead.State {
				return bead.State{
					"past":   appendState(past, current),
					"future": []bead.State{},
				}
			}),
			"undo": bead.Action(func(...any) bead.State {
				if len(past) == 0 {
					return bead.State{}
				}
				prev := past[len(past)-1]
				return prev.Merge(bead.State{
					"past":   append([]bead.State(nil), past[:len(past)-1]...),
					"future": prependState(current, future),
				})
			}),
			"redo": bead.Action(func(...any) bead.State {
				if len(future) == 0 {
					return bead.State{}
				}
				next := future[0]
				return next.Merge(bead.State{
					"past":   appendState(past, current),
					"future": append([]bead.State(nil), future[1:]...),
				})
			}),
		}, nil
	}, bead.Outputs("past", "future", "checkpoint", "undo", "redo"))
}

func snapshot(s bead.State, skip ...string) bead.State {
	out := s.Data()
	for _, k := range skip {
		delete(out, k)
	}
	return out
}

func appendState(list []bead.State, s bead.State) []bead.State {
	out := make([]bead.State, 0, len(list)+1)
	out = append(out, list...)
	return append(out, s)
}

func prependState(s bead.State, list []bead.State) []bead.State {
	out := make([]bead.State, 0, len(list)+1)
	out = append(out, s)
	return append(out, list...)
}
