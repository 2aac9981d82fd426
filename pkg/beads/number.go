package beads

import (
	"unicode"
	"unicode/utf8"

	"github.com/vango-dev/sparkle/pkg/bead"
)

// Number keeps an integer at key, starting at start, and injects
// increment<Key> and decrement<Key> actions that move it by step.
func Number(key string, start, step int) bead.Func {
	inc, dec := "increment"+capitalize(key), "decrement"+capitalize(key)

	return bead.New("number:"+key, func(s bead.State, _ *bead.Pass) (bead.State, error) {
		value := s.Int(key, start)
		return bead.State{
			key: value,
			inc: bead.Action(func(...any) bead.State {
				return bead.State{key: value + step}
			}),
			dec: bead.Action(func(...any) bead.State {
				return bead.State{key: value - step}
			}),
		}, nil
	}, bead.Outputs(key, inc, dec))
}

// Flag keeps a boolean at key, false by default, and injects a
// toggle<Key> action.
func Flag(key string) bead.Func {
	toggle := "toggle" + capitalize(key)

	return bead.New("flag:"+key, func(s bead.State, _ *bead.Pass) (bead.State, error) {
		value := s.Bool(key, false)
		return bead.State{
			key: value,
			toggle: bead.Action(func(...any) bead.State {
				return bead.State{key: !value}
			}),
		}, nil
	}, bead.Outputs(key, toggle))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
