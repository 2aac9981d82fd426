package server

import (
	"github.com/vango-dev/sparkle/pkg/sparkle"
)

// Message is an event sent by a browser.
type Message struct {
	Target  string `json:"target"`
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Outbound message types.
const (
	TypeHello = "hello"
	TypeFrame = "frame"
	TypeError = "error"
)

// Outbound is a message sent to a browser.
type Outbound struct {
	Type string `json:"type"`

	// hello
	ClientID string   `json:"id,omitempty"`
	Targets  []string `json:"targets,omitempty"`

	// frame
	Seq  uint64       `json:"seq,omitempty"`
	View sparkle.View `json:"view,omitempty"`

	// error
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
