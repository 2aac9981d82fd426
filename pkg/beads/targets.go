package beads

import (
	"github.com/vango-dev/sparkle/pkg/bead"
)

// TargetSet reports which UI targets a surface provides.
// sparkle.MemorySurface and the server surface implement it.
type TargetSet interface {
	HasTarget(target string) bool
}

// Targets records keys under the "el" map: the key itself when the surface
// provides it, nil otherwise. Missing targets are logged as warnings.
func Targets(ts TargetSet, keys ...string) bead.Func {
	return bead.New("targets", func(s bead.State, p *bead.Pass) (bead.State, error) {
		el := s.Map("el").Clone()
		for _, key := range keys {
			if ts.HasTarget(key) {
				el[key] = key
				continue
			}
			p.Logger().Warn("target not found", "target", key)
			el[key] = nil
		}
		return bead.State{"el": el}, nil
	}, bead.Outputs("el"))
}
