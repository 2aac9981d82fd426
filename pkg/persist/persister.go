package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/sparkle/pkg/bead"
)

// DefaultSaveDelay is how long a Persister waits after a pass before
// writing, so bursts of updates produce one write.
const DefaultSaveDelay = 50 * time.Millisecond

// SaveObserver receives save outcomes: "saved" or "failed".
type SaveObserver interface {
	ObserveSave(result string)
}

type nopSaveObserver struct{}

func (nopSaveObserver) ObserveSave(string) {}

// Option configures a Persister or Timeline.
type Option func(*options)

type options struct {
	fields   []string
	delay    time.Duration
	logger   *slog.Logger
	observer SaveObserver
	timeout  time.Duration
	now      func() time.Time
}

// Fields limits the persisted record to keys. By default every non-action
// field is saved.
func Fields(keys ...string) Option {
	return func(o *options) {
		o.fields = append(o.fields, keys...)
	}
}

// SaveDelay sets the write-behind delay. Zero writes as soon as the saver
// picks up the change.
func SaveDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.delay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver sets the save observer.
func WithObserver(obs SaveObserver) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithTimeout bounds each store call made by the background saver.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		delay:    DefaultSaveDelay,
		logger:   slog.Default().With("component", "persist"),
		observer: nopSaveObserver{},
		timeout:  10 * time.Second,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// record is what a codec produces for a pass. sig identifies the record
// for deduplication; body renders the bytes to write.
type record struct {
	sig  []byte
	body func(now time.Time) ([]byte, error)
}

// codec maps between states and stored records.
type codec interface {
	// restore turns a stored record into the partial merged on first pass.
	restore(data []byte) (bead.State, error)

	// capture builds the record for a decorated-so-far state.
	capture(s bead.State) (record, error)
}

// Persister saves selected fields of every pass and restores them on the
// first pass.
type Persister struct {
	store Store
	key   string
	codec codec
	opts  *options

	mu       sync.Mutex
	hydrated bool
	pending  *record
	lastSig  []byte
	closed   bool

	// saveMu serializes writes so they land in pass order.
	saveMu sync.Mutex

	kick      chan struct{}
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewPersister creates a persister writing to key in store and starts its
// background saver. Close stops it.
func NewPersister(store Store, key string, opts ...Option) *Persister {
	o := newOptions(opts)
	return newPersister(store, key, fieldCodec{fields: o.fields}, o)
}

func newPersister(store Store, key string, c codec, o *options) *Persister {
	p := &Persister{
		store:   store,
		key:     key,
		codec:   c,
		opts:    o,
		kick:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	p.opts.logger = p.opts.logger.With("key", key)
	go p.loop()
	return p
}

// Key returns the store key.
func (p *Persister) Key() string {
	return p.key
}

// Bead returns the bead that restores and saves state. Place it first so
// restored fields are visible to the beads after it.
func (p *Persister) Bead() bead.Func {
	return bead.New("persist:"+p.key, p.decorate)
}

func (p *Persister) decorate(s bead.State, pass *bead.Pass) (bead.State, error) {
	restored := p.hydrate(pass.Context())

	rec, err := p.codec.capture(s.Merge(restored))
	if err != nil {
		p.opts.logger.Warn("state not persisted", "error", err)
		return restored, nil
	}
	p.schedule(rec)
	return restored, nil
}

func (p *Persister) hydrate(ctx context.Context) bead.State {
	p.mu.Lock()
	if p.hydrated {
		p.mu.Unlock()
		return nil
	}
	p.hydrated = true
	p.mu.Unlock()

	data, err := p.store.Load(ctx, p.key)
	if err != nil {
		p.opts.logger.Warn("could not load persisted state", "error", err)
		return nil
	}
	if data == nil {
		return nil
	}

	restored, err := p.codec.restore(data)
	if err != nil {
		p.opts.logger.Warn("ignoring unreadable persisted state",
			"code", ErrUnreadable.Code,
			"error", err,
		)
		return nil
	}

	return restored
}

func (p *Persister) schedule(rec record) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	switch {
	case p.pending != nil && bytes.Equal(p.pending.sig, rec.sig):
		// Same record still waiting, possibly after a failed save.
	case p.pending == nil && p.lastSig != nil && bytes.Equal(p.lastSig, rec.sig):
		return
	default:
		p.pending = &rec
	}

	select {
	case p.kick <- struct{}{}:
	default:
	}
}

func (p *Persister) loop() {
	defer close(p.stopped)

	var backoff time.Duration
	var retry *time.Timer
	var retryC <-chan time.Time
	stopRetry := func() {
		if retry != nil {
			retry.Stop()
			retry, retryC = nil, nil
		}
	}
	defer stopRetry()

	for {
		select {
		case <-p.kick:
		case <-retryC:
			retry, retryC = nil, nil
		case <-p.done:
			return
		}
		stopRetry()

		if p.opts.delay > 0 {
			t := time.NewTimer(p.opts.delay)
			select {
			case <-t.C:
			case <-p.done:
				t.Stop()
				return
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), p.opts.timeout)
		err := p.Flush(ctx)
		cancel()
		if err == nil {
			backoff = 0
			continue
		}

		backoff = nextBackoff(backoff)
		p.opts.logger.Warn("could not save state, will retry", "error", err, "retry_in", backoff)
		retry = time.NewTimer(backoff)
		retryC = retry.C
	}
}

// Retry backoff after a failed background save.
const (
	minRetryDelay = 100 * time.Millisecond
	maxRetryDelay = 5 * time.Second
)

func nextBackoff(d time.Duration) time.Duration {
	if d < minRetryDelay {
		return minRetryDelay
	}
	d *= 2
	if d > maxRetryDelay {
		return maxRetryDelay
	}
	return d
}

// Flush writes the pending record, if any, and waits for the write.
func (p *Persister) Flush(ctx context.Context) error {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	p.mu.Lock()
	rec := p.pending
	p.pending = nil
	p.mu.Unlock()
	if rec == nil {
		return nil
	}

	data, err := rec.body(p.opts.now())
	if err == nil {
		err = p.store.Save(ctx, p.key, data)
	}
	if err != nil {
		p.mu.Lock()
		if p.pending == nil && !p.closed {
			p.pending = rec
		}
		p.mu.Unlock()
		p.opts.observer.ObserveSave("failed")
		return err
	}

	p.mu.Lock()
	p.lastSig = rec.sig
	p.mu.Unlock()
	p.opts.observer.ObserveSave("saved")
	p.opts.logger.Debug("state saved", "bytes", len(data))
	return nil
}

// Clear deletes the stored record. The next pass saves again.
func (p *Persister) Clear(ctx context.Context) error {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	p.mu.Lock()
	p.pending = nil
	p.lastSig = nil
	p.mu.Unlock()
	return p.store.Delete(ctx, p.key)
}

// Close stops the saver and writes any pending record. The store itself
// is not closed.
func (p *Persister) Close(ctx context.Context) error {
	p.closeOnce.Do(func() { close(p.done) })
	<-p.stopped

	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	return p.Flush(ctx)
}

// fieldCodec stores the selected fields as a JSON object.
type fieldCodec struct {
	fields []string
}

func (c fieldCodec) restore(data []byte) (bead.State, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	return c.pick(bead.State(m)), nil
}

func (c fieldCodec) capture(s bead.State) (record, error) {
	data, err := json.Marshal(c.pick(s.Data()))
	if err != nil {
		return record{}, err
	}
	return record{
		sig:  data,
		body: func(time.Time) ([]byte, error) { return data, nil },
	}, nil
}

func (c fieldCodec) pick(s bead.State) bead.State {
	if len(c.fields) == 0 {
		return s
	}
	out := make(bead.State, len(c.fields))
	for _, k := range c.fields {
		if v, ok := s[k]; ok {
			out[k] = v
		}
	}
	return out
}
