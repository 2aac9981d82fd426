package demo

import (
	"github.com/vango-dev/sparkle/pkg/bead"
)

// Todo is one item of the todo list.
type Todo struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// TodosOf reads "todos" from s. Lists restored from JSON are converted.
func TodosOf(s bead.State) []Todo {
	switch v := s["todos"].(type) {
	case []Todo:
		return v
	case []any:
		out := make([]Todo, 0, len(v))
		for _, item := range v {
			switch t := item.(type) {
			case Todo:
				out = append(out, t)
			case map[string]any:
				text, _ := t["text"].(string)
				done, _ := t["done"].(bool)
				out = append(out, Todo{Text: text, Done: done})
			}
		}
		return out
	}
	return []Todo{}
}

// Todos exposes addTodo(text), toggleTodo(index) and removeTodo(index)
// over "todos", respecting a restored list.
var Todos = bead.New("todos", func(s bead.State, _ *bead.Pass) (bead.State, error) {
	todos := TodosOf(s)
	return bead.State{
		"todos": todos,
		"addTodo": bead.Action(func(args ...any) bead.State {
			text, _ := arg(args, 0).(string)
			next := make([]Todo, 0, len(todos)+1)
			next = append(next, todos...)
			return bead.State{"todos": append(next, Todo{Text: text})}
		}),
		"toggleTodo": bead.Action(func(args ...any) bead.State {
			i, _ := intOf(arg(args, 0))
			next := append([]Todo(nil), todos...)
			if next == nil {
				next = []Todo{}
			}
			if i >= 0 && i < len(next) {
				next[i].Done = !next[i].Done
			}
			return bead.State{"todos": next}
		}),
		"removeTodo": bead.Action(func(args ...any) bead.State {
			i, ok := intOf(arg(args, 0))
			next := make([]Todo, 0, len(todos))
			for j, t := range todos {
				if ok && j == i {
					continue
				}
				next = append(next, t)
			}
			return bead.State{"todos": next}
		}),
	}, nil
}, bead.Outputs("todos", "addTodo", "toggleTodo", "removeTodo"))

func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}
