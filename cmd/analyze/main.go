// Command analyze prints quick, human-readable statistics about the puzzles
// in the catalog directory: dimensions, vehicle count, board occupancy, the
// vehicles blocking the player and the optimal solution length.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/rushhour/game/config"
	"github.com/wricardo/mcp-training/rushhour/game/engine"
)

// Analysis summarizes one catalog puzzle
type Analysis struct {
	Name         string
	Width        int
	Height       int
	Vehicles     int
	Occupancy    float64
	ExitDistance int // Manhattan distance from the player's head to the exit, -1 without a player
	Blockers     []string
	Outcome      string
	Moves        int
	Steps        int
	Explored     int
}

// Outcomes of the bounded search
const (
	outcomeSolved     = "solved"
	outcomeNoSolution = "no solution"
	outcomeLimit      = "limit reached"
)

// analyzePuzzle computes the statistics for a parsed board
func analyzePuzzle(ctx context.Context, name string, board *engine.Board, maxStates int) (Analysis, error) {
	a := Analysis{
		Name:         name,
		Width:        board.Width(),
		Height:       board.Height(),
		Vehicles:     len(board.Vehicles()),
		Occupancy:    engine.Occupancy(board),
		ExitDistance: -1,
		Blockers:     engine.Blockers(board),
	}
	if player, ok := board.Player(); ok {
		a.ExitDistance = engine.ManhattanDistance(player.Head(), board.Exit())
	}

	res, err := engine.NewSolver(engine.Options{MaxStates: maxStates}).Solve(ctx, board)
	switch {
	case err == nil:
		a.Outcome = outcomeSolved
		a.Moves = engine.TotalMoves(res.Steps)
		a.Steps = len(res.Steps)
	case errors.Is(err, engine.ErrNoSolution):
		a.Outcome = outcomeNoSolution
	case errors.Is(err, engine.ErrStateLimit):
		a.Outcome = outcomeLimit
	default:
		return a, err
	}
	a.Explored = res.Explored
	return a, nil
}

func printAnalysis(w io.Writer, a Analysis) {
	fmt.Fprintf(w, "Grid: %d x %d\n", a.Width, a.Height)
	fmt.Fprintf(w, "Vehicles: %d\n", a.Vehicles)
	fmt.Fprintf(w, "Occupancy: %.0f%%\n", a.Occupancy*100)
	if a.ExitDistance >= 0 {
		fmt.Fprintf(w, "Player distance to exit: %d\n", a.ExitDistance)
	} else {
		fmt.Fprintf(w, "⚠️  WARNING: no player car\n")
	}
	if len(a.Blockers) > 0 {
		fmt.Fprintf(w, "Blocking the player: %s\n", strings.Join(a.Blockers, ", "))
	}

	switch a.Outcome {
	case outcomeSolved:
		fmt.Fprintf(w, "✅ Optimal solution: %d moves in %d steps (%d states explored)\n", a.Moves, a.Steps, a.Explored)
	case outcomeNoSolution:
		fmt.Fprintf(w, "⚠️  CRITICAL: no solution exists (%d states explored)\n", a.Explored)
	default:
		fmt.Fprintf(w, "⚠️  WARNING: no solution within %d states\n", a.Explored)
	}
}

// analyzeCatalog prints an analysis of every puzzle in dir
func analyzeCatalog(ctx context.Context, w io.Writer, dir string, maxStates int) error {
	catalog, err := config.NewManager(dir)
	if err != nil {
		return err
	}

	puzzles, err := catalog.ListPuzzles()
	if err != nil {
		return err
	}

	for _, info := range puzzles {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", info.Filename)

		_, board, err := catalog.LoadPuzzle(info.ID)
		if err != nil {
			fmt.Fprintf(w, "Error loading puzzle: %v\n", err)
			continue
		}

		a, err := analyzePuzzle(ctx, info.ID, board, maxStates)
		if err != nil {
			return err
		}
		printAnalysis(w, a)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "print statistics about catalog puzzles",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "puzzles", Usage: "puzzle catalog directory"},
			&cli.IntFlag{Name: "max-states", Value: 1000000, Usage: "search budget per puzzle"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return analyzeCatalog(ctx, os.Stdout, cmd.String("dir"), int(cmd.Int("max-states")))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
