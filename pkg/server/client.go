package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// client is one connected browser.
type client struct {
	id   string
	conn *websocket.Conn

	writeTimeout time.Duration
	writeMu      sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(id string, conn *websocket.Conn, writeTimeout time.Duration) *client {
	return &client{
		id:           id,
		conn:         conn,
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
	}
}

// send writes one message. Writes are serialized per client.
func (c *client) send(msg Outbound) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.write(msg)
}

// write is send for callers holding writeMu.
func (c *client) write(msg Outbound) error {
	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteJSON(msg)
}

func (c *client) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout))
}

// pingLoop pings until the client closes.
func (c *client) pingLoop(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if err := c.ping(); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
