package demo

import (
	"math"

	"github.com/vango-dev/sparkle/pkg/bead"
)

// Counter exposes increment and decrement actions over "count".
var Counter = bead.New("counter", func(s bead.State, _ *bead.Pass) (bead.State, error) {
	count := s.Int("count", 0)
	return bead.State{
		"count": count,
		"increment": bead.Action(func(...any) bead.State {
			return bead.State{"count": count + 1}
		}),
		"decrement": bead.Action(func(...any) bead.State {
			return bead.State{"count": count - 1}
		}),
	}, nil
}, bead.Outputs("count", "increment", "decrement"))

// CountToggles exposes countToggle, which bumps "toggleCount".
var CountToggles = bead.New("countToggles", func(s bead.State, _ *bead.Pass) (bead.State, error) {
	n := s.Int("toggleCount", 0)
	return bead.State{
		"countToggle": bead.Action(func(...any) bead.State {
			return bead.State{"toggleCount": n + 1}
		}),
	}, nil
}, bead.Outputs("countToggle"))

// Toggle exposes toggle over "isOn".
var Toggle = bead.New("toggle", func(s bead.State, _ *bead.Pass) (bead.State, error) {
	on := s.Bool("isOn", false)
	return bead.State{
		"isOn": on,
		"toggle": bead.Action(func(...any) bead.State {
			return bead.State{"isOn": !on}
		}),
	}, nil
}, bead.Outputs("isOn", "toggle"))

// NewText keeps the draft todo text, respecting a restored value.
var NewText = bead.New("newText", func(s bead.State, _ *bead.Pass) (bead.State, error) {
	return bead.State{"newText": s.String("newText", "")}, nil
}, bead.Outputs("newText"))

// Time counts elapsed seconds and exposes tick and reset.
var Time = bead.New("time", func(s bead.State, _ *bead.Pass) (bead.State, error) {
	seconds := s.Int("seconds", 0)
	return bead.State{
		"seconds": seconds,
		"tick": bead.Action(func(...any) bead.State {
			return bead.State{"seconds": seconds + 1}
		}),
		"reset": bead.Action(func(...any) bead.State {
			return bead.State{"seconds": 0}
		}),
	}, nil
}, bead.Outputs("seconds", "tick", "reset"))

// Votes derives vote totals and percentages from "upvotes" and "downvotes".
var Votes = bead.New("votes", func(s bead.State, _ *bead.Pass) (bead.State, error) {
	up, down := s.Int("upvotes", 0), s.Int("downvotes", 0)
	total := up + down
	percent := 0
	if total > 0 {
		percent = int(math.Round(float64(up) / float64(total) * 100))
	}
	return bead.State{
		"voteCount":   up,
		"voteTotal":   total,
		"votePercent": percent,
		"upvote": bead.Action(func(...any) bead.State {
			return bead.State{"upvotes": up + 1}
		}),
		"downvote": bead.Action(func(...any) bead.State {
			return bead.State{"downvotes": down + 1}
		}),
	}, nil
}, bead.Outputs("voteCount", "voteTotal", "votePercent", "upvote", "downvote"))

// Carousel cycles "index" through "slides" with next and prev.
var Carousel = bead.New("carousel", func(s bead.State, _ *bead.Pass) (bead.State, error) {
	slides := stringsOf(s["slides"])
	index := s.Int("index", 0)
	n := len(slides)
	if n == 0 {
		return bead.State{
			"index":  0,
			"slides": slides,
			"next":   bead.Action(func(...any) bead.State { return bead.State{} }),
			"prev":   bead.Action(func(...any) bead.State { return bead.State{} }),
		}, nil
	}
	index = ((index % n) + n) % n
	return bead.State{
		"index":  index,
		"slides": slides,
		"next": bead.Action(func(...any) bead.State {
			return bead.State{"index": (index + 1) % n}
		}),
		"prev": bead.Action(func(...any) bead.State {
			return bead.State{"index": (index - 1 + n) % n}
		}),
	}, nil
}, bead.Outputs("index", "slides", "next", "prev"))

func stringsOf(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// do calls an action and returns its partial, or nil if the state has no
// such action.
func do(s bead.State, name string, args ...any) bead.State {
	p, err := s.Do(name, args...)
	if err != nil {
		return nil
	}
	return p
}

// intOf reads an index from an event payload. JSON numbers arrive as
// float64.
func intOf(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	case map[string]any:
		return intOf(n["index"])
	}
	return 0, false
}
