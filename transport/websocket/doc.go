// Package websocket pushes solver events to browser and CLI listeners.
//
// The websocket package implements:
//   - A hub that owns every connection from a single goroutine
//   - Channel subscriptions, one channel per solution ID
//   - A wildcard channel "*" that receives every event
//   - Ping/pong keepalive and slow-client eviction
//
// Message Protocol:
//
// Clients only listen. Each frame is one JSON object:
//
//	{"channel": "a1b2", "event": "progress", "data": {"explored": 10000, ...}}
//
// The final frame of a search carries the outcome as its event name
// (solved, no_solution or limit_reached) and the full result as data.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("solution"))
//	})
package websocket
