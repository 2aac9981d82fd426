package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	sparkerrors "github.com/vango-dev/sparkle/internal/errors"
	"github.com/vango-dev/sparkle/pkg/bead"
	"github.com/vango-dev/sparkle/pkg/sparkle"
)

// Metrics receives client connection counts.
type Metrics interface {
	ClientConnected()
	ClientDisconnected()
}

type nopMetrics struct{}

func (nopMetrics) ClientConnected()    {}
func (nopMetrics) ClientDisconnected() {}

// ErrClosed is returned by Serve on a closed server.
var ErrClosed = errors.New("server: closed")

// Server is a sparkle surface served over WebSocket. It implements
// sparkle.Surface, sparkle.Display and sparkle.Scheduler.
type Server struct {
	config   Config
	logger   *slog.Logger
	metrics  Metrics
	upgrader websocket.Upgrader

	metricsHandler http.Handler
	middlewares    []func(http.Handler) http.Handler

	mu        sync.RWMutex
	bindings  map[string]func(any) error
	targets   map[string]bool
	clients   map[string]*client
	lastFrame *Outbound
	state     func() bead.State

	seq   atomic.Uint64
	queue chan func()

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the client gauge sink.
func WithMetrics(m Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithMetricsHandler serves h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metricsHandler = h
	}
}

// WithMiddleware wraps every HTTP route, in the order given.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(s *Server) {
		s.middlewares = append(s.middlewares, mw...)
	}
}

// New creates a server. Call Run or ListenAndServe to start its event loop.
func New(config Config, opts ...Option) *Server {
	config.applyDefaults()

	s := &Server{
		config:   config,
		logger:   slog.Default().With("component", "server"),
		metrics:  nopMetrics{},
		bindings: make(map[string]func(any) error),
		targets:  make(map[string]bool),
		clients:  make(map[string]*client),
		queue:    make(chan func(), config.QueueSize),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  config.ReadBufferSize,
		WriteBufferSize: config.WriteBufferSize,
		CheckOrigin:     config.CheckOrigin,
	}
	return s
}

// SetState sets the source served at /state.
func (s *Server) SetState(fn func() bead.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn
}

func bindingKey(target, event string) string {
	return target + "\x00" + event
}

// Bind implements sparkle.Surface.
func (s *Server) Bind(target, event string, fn func(payload any) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[bindingKey(target, event)] = fn
	s.targets[target] = true
}

// Declare records targets the page provides.
func (s *Server) Declare(targets ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range targets {
		s.targets[t] = true
	}
}

// HasTarget reports whether target was declared or bound.
func (s *Server) HasTarget(target string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.targets[target]
}

// Targets returns the known targets, sorted.
func (s *Server) Targets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.targets))
	for t := range s.targets {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Show implements sparkle.Display by broadcasting a frame to every client.
// New clients receive the latest frame on connect.
func (s *Server) Show(view sparkle.View) {
	frame := Outbound{Type: TypeFrame, Seq: s.seq.Add(1), View: view}

	s.mu.Lock()
	s.lastFrame = &frame
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		if err := c.send(frame); err != nil {
			s.logger.Warn("frame write failed", "client", c.id, "error", err)
			c.close()
		}
	}
}

// Enqueue implements sparkle.Scheduler. Work enqueued after Close is
// dropped.
func (s *Server) Enqueue(fn func()) {
	select {
	case s.queue <- fn:
	case <-s.done:
	}
}

// Run processes the event loop until ctx is done or the server closes.
func (s *Server) Run(ctx context.Context) {
	for {
		select {
		case fn := <-s.queue:
			s.execute(fn)
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

// execute runs fn with panic recovery.
func (s *Server) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("event loop panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// dispatch queues a browser event for the loop.
func (s *Server) dispatch(c *client, msg Message) {
	s.Enqueue(func() {
		s.mu.RLock()
		fn, ok := s.bindings[bindingKey(msg.Target, msg.Event)]
		s.mu.RUnlock()
		if !ok {
			s.reply(c, "", "no handler for "+msg.Target+"/"+msg.Event)
			return
		}
		if err := fn(msg.Payload); err != nil {
			code := ""
			var se *sparkerrors.Error
			if errors.As(err, &se) {
				code = se.Code
			}
			s.reply(c, code, err.Error())
		}
	})
}

func (s *Server) reply(c *client, code, message string) {
	if err := c.send(Outbound{Type: TypeError, Code: code, Message: message}); err != nil {
		c.close()
	}
}

// handleWebSocket upgrades the request and serves the client until it
// disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	select {
	case <-s.done:
		http.Error(w, "server closing", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(s.config.MaxMessageSize)

	c := newClient(uuid.NewString(), conn, s.config.WriteTimeout)

	// Hold the client's write lock across registration so a concurrent
	// Show cannot deliver a newer frame ahead of the hello and last frame.
	c.writeMu.Lock()
	s.mu.Lock()
	s.clients[c.id] = c
	last := s.lastFrame
	s.mu.Unlock()
	s.metrics.ClientConnected()
	s.logger.Info("client connected", "client", c.id, "remote", r.RemoteAddr)

	defer func() {
		s.mu.Lock()
		delete(s.clients, c.id)
		s.mu.Unlock()
		c.close()
		s.metrics.ClientDisconnected()
		s.logger.Info("client disconnected", "client", c.id)
	}()

	err = c.write(Outbound{Type: TypeHello, ClientID: c.id, Targets: s.Targets()})
	if err == nil && last != nil {
		err = c.write(*last)
	}
	c.writeMu.Unlock()
	if err != nil {
		return
	}

	if s.config.PingInterval > 0 && s.track() {
		go func() {
			defer s.wg.Done()
			c.pingLoop(s.config.PingInterval)
		}()
	}

	s.readLoop(c)
}

// track adds a goroutine to the set Close waits for. It reports false once
// the server is closing.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
		return false
	default:
	}
	s.wg.Add(1)
	return true
}

func (s *Server) readLoop(c *client) {
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if isMalformed(err) {
				s.reply(c, "", "malformed message")
				continue
			}
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Warn("read error", "client", c.id, "error", err)
			}
			return
		}
		if msg.Target == "" || msg.Event == "" {
			s.reply(c, "", "message needs target and event")
			continue
		}
		s.dispatch(c, msg)
	}
}

// isMalformed reports whether a read failed on decoding rather than on the
// connection. The connection stays usable after a decode error.
func isMalformed(err error) bool {
	var syntax *json.SyntaxError
	var typ *json.UnmarshalTypeError
	return errors.As(err, &syntax) || errors.As(err, &typ)
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close disconnects every client and stops the event loop. Queued work
// is dropped.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})

	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.writeMu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		c.close()
	}
	s.wg.Wait()
	return nil
}

// ListenAndServe listens on the configured address and serves until ctx
// is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the event loop and serves HTTP on ln until ctx is done, then
// shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	select {
	case <-s.done:
		ln.Close()
		return ErrClosed
	default:
	}

	loopCtx, stopLoop := context.WithCancel(ctx)
	var loop sync.WaitGroup
	loop.Add(1)
	go func() {
		defer loop.Done()
		s.Run(loopCtx)
	}()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("listening", "addr", ln.Addr().String())

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		s.Close()
		err = srv.Shutdown(shutdownCtx)
		cancel()
		<-errCh
	}

	stopLoop()
	loop.Wait()
	s.Close()

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
