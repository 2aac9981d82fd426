package sparkle

import (
	"time"

	"github.com/vango-dev/sparkle/pkg/bead"
)

// fanout forwards decoration events to several observers.
type fanout []bead.Observer

func (f fanout) ObserveDecoration(depth int, elapsed time.Duration, err error) {
	for _, o := range f {
		o.ObserveDecoration(depth, elapsed, err)
	}
}

func (f fanout) ObserveCollision(name string, keys []string) {
	for _, o := range f {
		o.ObserveCollision(name, keys)
	}
}
