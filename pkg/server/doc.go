// Package server hosts a sparkle app for browsers over WebSocket.
//
// A Server is the app's surface. Browsers connect to /ws, receive every
// rendered view as a frame, and send events back:
//
//	→ {"target":"inc","event":"click","payload":null}
//	← {"type":"frame","seq":3,"view":{"countDisplay":1}}
//
// All handlers, renders and scheduled work run on one event loop
// goroutine, started by Run or ListenAndServe, so app code never runs
// concurrently with itself.
//
// # Routes
//
//   - GET /        built-in page that renders views into elements by id
//   - GET /ws      WebSocket endpoint
//   - GET /state   current state data as JSON
//   - GET /metrics Prometheus metrics, when a metrics handler is set
//   - GET /healthz liveness probe
//
// # Example Usage
//
//	srv := server.New(server.DefaultConfig())
//	inst, err := demo.Run("counter", demo.Env{Host: srv})
//	if err != nil {
//	    return err
//	}
//	srv.SetState(inst.App.State)
//	return srv.ListenAndServe(ctx)
package server
