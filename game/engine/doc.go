// Package engine provides the core solver for Rush Hour sliding-block puzzles.
//
// The engine package implements:
//   - Vehicles: rigid straight pieces that slide along their own axis
//   - Boards: immutable snapshots of every vehicle plus the fixed geometry
//   - Move generation: every board one legal single-cell slide away
//   - Breadth-first search for a shortest solution
//   - Path reconstruction and run-length compression into steps
//
// Core Types:
//
// Board is produced once by Parse and then only derived by MoveVehicle,
// which returns a fresh board. Solver walks the implicit state graph
// keyed by Board.Key, storing one parent key per discovered board.
//
// Usage:
//
//	board, err := engine.Parse(text)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := engine.NewSolver(engine.Options{MaxStates: 1_000_000}).Solve(ctx, board)
//	if errors.Is(err, engine.ErrNoSolution) {
//		fmt.Println("No solution found.")
//	}
//
//	for i, step := range result.Steps {
//		fmt.Printf("%2d. %s\n", i+1, step)
//	}
//
// Puzzle Format:
//
// Puzzles are drawn inside a '+', '-', '|' border. One border cell is
// replaced by 'x' to mark the exit; the vehicle drawn with 'X' is the
// player. Empty cells are '.' or spaces.
package engine
