package sparkle

import (
	"fmt"

	"github.com/vango-dev/sparkle/pkg/bead"
)

// partialOf normalizes a handler result. nil means no change. A slice is
// merged left to right; entries that are not mappings are skipped.
func partialOf(result any) (bead.State, error) {
	switch r := result.(type) {
	case nil:
		return nil, nil
	case bead.State:
		if r == nil {
			return bead.State{}, nil
		}
		return r, nil
	case map[string]any:
		return bead.State(r), nil
	case []bead.State:
		return bead.State{}.Merge(r...), nil
	case []map[string]any:
		merged := bead.State{}
		for _, p := range r {
			for k, v := range p {
				merged[k] = v
			}
		}
		return merged, nil
	case []any:
		merged := bead.State{}
		for _, item := range r {
			switch p := item.(type) {
			case bead.State:
				merged = merged.Merge(p)
			case map[string]any:
				merged = merged.Merge(bead.State(p))
			}
		}
		return merged, nil
	}
	return nil, ErrInvalidWireResult.WithDetail("handler returned %s", typeName(result))
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
