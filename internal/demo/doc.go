// Package demo contains the example apps served by the sparkle CLI: counter,
// todo, toggle, timer, vote and carousel.
//
// Each app is a Builder that assembles beads, a render function and wiring
// against a Host. Tests use a sparkle.MemorySurface as the host; the CLI
// uses the WebSocket surface from pkg/server.
package demo
