package demo

import (
	"context"
	"sync"
	"time"

	"github.com/vango-dev/sparkle/pkg/bead"
	"github.com/vango-dev/sparkle/pkg/beads"
	"github.com/vango-dev/sparkle/pkg/sparkle"
)

// ticker drives the timer app. Ticks are delivered through the host
// scheduler so updates stay on the event loop.
type ticker struct {
	host     sparkle.Scheduler
	interval time.Duration
	tick     func()

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// start begins ticking. Starting a running ticker does nothing.
func (t *ticker) start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		tk := time.NewTicker(t.interval)
		defer tk.Stop()
		for {
			select {
			case <-tk.C:
				t.host.Enqueue(func() {
					if ctx.Err() == nil {
						t.tick()
					}
				})
			case <-ctx.Done():
				return
			}
		}
	}()
}

// stop ends ticking without waiting. It is called from event handlers,
// which run on the loop the ticker goroutine may be waiting for.
func (t *ticker) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

func (t *ticker) running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// close stops ticking and waits for the goroutine to exit.
func (t *ticker) close(context.Context) error {
	t.stop()
	t.wg.Wait()
	return nil
}

func buildTimer(env Env) (*Instance, error) {
	inst := &Instance{}
	interval := env.TickInterval
	if interval <= 0 {
		interval = time.Second
	}
	logger := env.logger()

	tk := &ticker{host: env.Host, interval: interval}
	inst.onClose(tk.close)

	err := assemble(env, inst, []string{"timeDisplay", "start", "stop", "reset"}, sparkle.Config{
		Seed: bead.State{"seconds": 0},
		Beads: []bead.Func{
			Time,
			beads.Logger("log"),
		},
		Render: func(s bead.State) {
			env.Host.Show(sparkle.View{
				"timeDisplay": formatSeconds(s.Int("seconds", 0)),
				"running":     tk.running(),
			})
		},
		Setup: func(app *sparkle.App) error {
			tk.tick = func() {
				if err := app.Update(func(s bead.State) bead.State {
					return s.Merge(do(s, "tick"))
				}); err != nil {
					logger.Warn("tick failed", "error", err)
				}
			}
			app.Wire("start", "click", func(bead.State, sparkle.Event) any {
				tk.start()
				return nil
			})
			app.Wire("stop", "click", func(bead.State, sparkle.Event) any {
				tk.stop()
				return nil
			})
			app.Wire("reset", "click", func(s bead.State, _ sparkle.Event) any {
				tk.stop()
				return do(s, "reset")
			})
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return inst, nil
}

func formatSeconds(n int) string {
	return (time.Duration(n) * time.Second).String()
}
