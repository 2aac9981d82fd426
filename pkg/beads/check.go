package beads

import (
	"github.com/vango-dev/sparkle/pkg/bead"
)

// InterfaceTest aborts the pass with bead.ErrInterfaceValidation when
// validate rejects the state decorated so far. On success it marks the
// state with "_tested:<name>".
//
// Place it after the beads whose output it checks.
func InterfaceTest(name string, validate func(bead.State) bool) bead.Func {
	marker := "_tested:" + name

	return bead.New("test:"+name, func(s bead.State, _ *bead.Pass) (bead.State, error) {
		if !validate(s) {
			return nil, bead.ErrInterfaceValidation.WithDetail("interface %q not satisfied", name)
		}
		return bead.State{marker: true}, nil
	}, bead.Outputs(marker))
}

// Requires is an InterfaceTest that checks the given keys are present.
func Requires(name string, keys ...string) bead.Func {
	return InterfaceTest(name, func(s bead.State) bool {
		for _, k := range keys {
			if !s.Has(k) {
				return false
			}
		}
		return true
	})
}

// RequiresActions is an InterfaceTest that checks the given actions exist.
func RequiresActions(name string, actions ...string) bead.Func {
	return InterfaceTest(name, func(s bead.State) bool {
		for _, a := range actions {
			if _, ok := s.Action(a); !ok {
				return false
			}
		}
		return true
	})
}
