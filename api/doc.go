// Package api provides HTTP REST API handlers for the Rush Hour solver.
//
// Endpoints:
//
// Solving:
//   - POST /api/solve - Solve {"puzzle": "..."} or {"puzzle_name": "..."}, optional "max_states" and "id"
//   - POST /api/puzzles/{name}/solve - Solve a catalog puzzle
//
// Solutions:
//   - GET /api/solutions - List recorded searches (?outcome=, ?limit=)
//   - GET /api/solutions/{id} - Get one recorded search
//   - DELETE /api/solutions/{id} - Delete a recorded search
//
// Puzzles:
//   - GET /api/puzzles - List the catalog
//   - GET /api/puzzles/{name} - Puzzle detail, or raw text with Accept: text/plain
//   - POST /api/puzzles/{name} - Save a puzzle (raw text or {"puzzle": "..."})
//
// Live updates:
//   - GET /ws?solution={id} - Progress and outcome events for one search
//   - GET /ws - Events for every search
//
// Errors:
//
// Failures are returned as {"error": "message"}. Invalid puzzles and
// malformed requests are 400, unknown puzzles and solutions are 404, and a
// search cancelled by the client is 503.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//	server := api.NewServer(solverService, hub, logger)
//	http.ListenAndServe(":8080", server)
package api
