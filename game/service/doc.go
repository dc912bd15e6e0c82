// Package service provides the business logic layer for the Rush Hour solver.
//
// The service package implements:
//   - Solving inline or catalog puzzles with a bounded search
//   - Recording every finished search as a solution record
//   - Pushing progress and outcome events to subscribers
//   - Catalog access for listing, loading and saving puzzles
//
// Core Interfaces:
//
// SolverService is the main service interface used by the HTTP, WebSocket
// and MCP transports. SolutionStore keeps finished searches, PuzzleCatalog
// serves named puzzles and ProgressNotifier receives search events.
//
// Architecture:
//
// The service layer sits between the transports and the engine. A search
// that runs out of states or exhausts the state space is a normal outcome
// (no_solution or limit_reached) and is recorded like a solved one. Only
// malformed requests, unknown puzzles and cancelled searches are errors.
//
// Usage:
//
//	store := session.NewManager()
//	catalog, _ := config.NewManager("puzzles")
//	svc := service.NewSolverService(store, catalog, service.Options{MaxStates: 1_000_000})
//
//	result, err := svc.Solve(ctx, service.SolveRequest{PuzzleName: "classic"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Outcome, result.TotalMoves)
//
// Events:
//
// Progress events are broadcast on the channel named after the solution ID
// with event "progress". The final event name is the outcome itself.
package service
