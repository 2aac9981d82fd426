package server

import (
	"net/http"
	"time"
)

// Config configures a Server.
type Config struct {
	// Addr is the listen address (default ":8080").
	Addr string

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// WriteTimeout bounds each frame write to a client.
	WriteTimeout time.Duration

	// PingInterval is how often clients are pinged. Zero disables pings.
	PingInterval time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// QueueSize is the event loop queue capacity.
	QueueSize int

	// MaxMessageSize limits inbound messages in bytes.
	MaxMessageSize int64

	// CheckOrigin validates the WebSocket Origin header.
	// Default: same-origin requests only.
	CheckOrigin func(r *http.Request) bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		WriteTimeout:    10 * time.Second,
		PingInterval:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		QueueSize:       256,
		MaxMessageSize:  64 << 10,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = d.WriteBufferSize
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.QueueSize == 0 {
		c.QueueSize = d.QueueSize
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
}
