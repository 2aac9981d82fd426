package beads

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/vango-dev/sparkle/pkg/bead"
)

// Logger injects an action named label that logs the state it was decorated
// from. The action contributes nothing to the state.
//
// An app calls the "log" action after every successful update, so
// Logger("log") gives a log line per state change.
func Logger(label string) bead.Func {
	return bead.New("logger:"+label, func(s bead.State, p *bead.Pass) (bead.State, error) {
		logger := p.Logger()
		data := s.Data()
		return bead.State{
			label: bead.Action(func(...any) bead.State {
				logger.Info(label, "state", data)
				return bead.State{}
			}),
		}, nil
	}, bead.Outputs(label))
}

// Inspector hands every decorated-so-far state, without actions, to sink.
// It contributes nothing to the state.
func Inspector(sink func(bead.State)) bead.Func {
	return bead.New("inspector", func(s bead.State, _ *bead.Pass) (bead.State, error) {
		sink(s.Data())
		return nil, nil
	})
}

// JSONInspector writes each state as indented JSON to w. Values that cannot
// be encoded are logged and skipped.
func JSONInspector(w io.Writer) bead.Func {
	var mu sync.Mutex
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return bead.New("inspector:json", func(s bead.State, p *bead.Pass) (bead.State, error) {
		mu.Lock()
		defer mu.Unlock()
		if err := enc.Encode(s.Data()); err != nil {
			p.Logger().Warn("inspector could not encode state", "error", err)
		}
		return nil, nil
	})
}
