package bead

import (
	"context"
	"log/slog"
)

type factoryConfig struct {
	outputs map[string]bool
}

// FactoryOption configures New.
type FactoryOption func(*factoryConfig)

// Outputs declares the keys the bead may return. Any other key aborts the
// pass with ErrUndeclaredKey.
func Outputs(keys ...string) FactoryOption {
	return func(c *factoryConfig) {
		if c.outputs == nil {
			c.outputs = make(map[string]bool, len(keys))
		}
		for _, k := range keys {
			c.outputs[k] = true
		}
	}
}

// New wraps fn as a named bead. The wrapper logs input and output at debug
// level, reports key collisions, and enforces declared outputs. It returns
// fn's partial unchanged; a nil partial becomes an empty one.
func New(name string, fn Func, opts ...FactoryOption) Func {
	cfg := &factoryConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(s State, p *Pass) (State, error) {
		logger := p.Logger().With("bead", name)
		debug := logger.Enabled(context.Background(), slog.LevelDebug)
		if debug {
			logger.Debug("bead input", "state", s.Data())
		}

		partial, err := fn(s, p)
		if err != nil {
			return nil, err
		}
		if partial == nil {
			partial = State{}
		}

		if debug {
			logger.Debug("bead output", "partial", partial.Data())
		}

		if cfg.outputs != nil {
			for _, k := range partial.Keys() {
				if !cfg.outputs[k] {
					return nil, ErrUndeclaredKey.WithDetail("bead %q returned %q", name, k)
				}
			}
		}

		if keys := Collisions(s, partial); len(keys) > 0 {
			logger.Warn("bead overlaps keys",
				"code", KeyCollision.Code,
				"keys", keys,
				"depth", p.Depth(),
			)
			p.Observer().ObserveCollision(name, keys)
		}

		return partial, nil
	}
}
