package bead

import (
	"math"
	"reflect"
	"sort"
)

// State is an open mapping from field name to value. Values are plain data
// or actions injected by beads.
type State map[string]any

// Action is a behavior injected into the state by a bead. It returns a
// partial state describing the change.
type Action func(args ...any) State

// Clone returns a shallow copy. A nil state clones to an empty one.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge returns a new state with partials applied left to right.
// The receiver is not modified.
func (s State) Merge(partials ...State) State {
	n := len(s)
	for _, p := range partials {
		n += len(p)
	}
	out := make(State, n)
	for k, v := range s {
		out[k] = v
	}
	for _, p := range partials {
		for k, v := range p {
			out[k] = v
		}
	}
	return out
}

// Has reports whether key is present.
func (s State) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Keys returns the keys in sorted order.
func (s State) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Int returns the integer at key, or def when missing or not a whole number.
// Whole float64 values (as produced by JSON decoding) are accepted.
func (s State) Int(key string, def int) int {
	switch v := s[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int(v)
		}
	}
	return def
}

// Float returns the number at key, or def.
func (s State) Float(key string, def float64) float64 {
	switch v := s[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// String returns the string at key, or def.
func (s State) String(key, def string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return def
}

// Bool returns the bool at key, or def.
func (s State) Bool(key string, def bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return def
}

// Slice returns the []any at key, or nil.
func (s State) Slice(key string) []any {
	if v, ok := s[key].([]any); ok {
		return v
	}
	return nil
}

// Map returns the nested state at key. Plain map[string]any values are
// converted. Missing or other values yield nil.
func (s State) Map(key string) State {
	switch v := s[key].(type) {
	case State:
		return v
	case map[string]any:
		return State(v)
	}
	return nil
}

// Action returns the action stored at name.
func (s State) Action(name string) (Action, bool) {
	switch fn := s[name].(type) {
	case Action:
		return fn, true
	case func(...any) State:
		return fn, true
	}
	return nil, false
}

// Do calls the action stored at name and returns its partial.
func (s State) Do(name string, args ...any) (State, error) {
	fn, ok := s.Action(name)
	if !ok {
		return nil, ErrActionNotFound.WithDetail("%q", name)
	}
	return fn(args...), nil
}

// Data returns a copy without function values. It is what gets logged,
// inspected and serialized.
func (s State) Data() State {
	out := make(State, len(s))
	for k, v := range s {
		if isFunc(v) {
			continue
		}
		out[k] = v
	}
	return out
}

func isFunc(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Kind() == reflect.Func
}

// Collisions returns the keys present in both acc and partial whose values
// differ, sorted. Maps, slices and pointers compare by identity, functions
// never compare equal, and other values compare with ==.
func Collisions(acc, partial State) []string {
	var keys []string
	for k, v := range partial {
		old, ok := acc[k]
		if !ok {
			continue
		}
		if !sameValue(old, v) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Func:
		return ra.IsNil() && rb.IsNil()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	}
	if !ra.Type().Comparable() {
		return false
	}
	return safeEqual(a, b)
}

// safeEqual compares with ==, treating a runtime panic (an interface field
// holding an uncomparable value) as "different".
func safeEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// States returns the list of nested states at key. []State, []map[string]any
// and []any of mappings are accepted; other entries are skipped.
func (s State) States(key string) []State {
	switch v := s[key].(type) {
	case []State:
		return v
	case []map[string]any:
		out := make([]State, len(v))
		for i, m := range v {
			out[i] = State(m)
		}
		return out
	case []any:
		out := make([]State, 0, len(v))
		for _, item := range v {
			switch m := item.(type) {
			case State:
				out = append(out, m)
			case map[string]any:
				out = append(out, State(m))
			}
		}
		return out
	}
	return nil
}
