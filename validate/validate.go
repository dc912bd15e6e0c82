// Command validate lints the puzzle files in a catalog directory. It checks:
//   - Border shape and consistent row widths
//   - Exactly one exit marker, placed on the border away from the corners
//   - Every vehicle is a straight, gap-free line of cells
//   - Exactly one player car X, lined up with the exit
//   - Solvability within a bounded search
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// Errors make a puzzle invalid; Warnings and Info are only reported.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// validatePuzzleFile reads and lints a single puzzle file
func validatePuzzleFile(path string, maxStates int) ValidationResult {
	data, err := os.ReadFile(path)
	if err != nil {
		result := ValidationResult{File: filepath.Base(path)}
		result.fail("Failed to read file: %v", err)
		return result
	}

	result := lintPuzzle(string(data), maxStates)
	result.File = filepath.Base(path)
	return result
}

// lintPuzzle runs the structural checks on puzzle text and, when they all
// pass, searches for a solution with at most maxStates explored states.
func lintPuzzle(text string, maxStates int) ValidationResult {
	result := ValidationResult{Valid: true}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		result.fail("Puzzle is empty")
		return result
	}

	lines := strings.Split(trimmed, "\n")
	rows := make([][]rune, len(lines))
	for i, line := range lines {
		rows[i] = []rune(strings.TrimSpace(line))
	}

	height := len(rows)
	width := len(rows[0])
	if height < 3 || width < 3 {
		result.fail("Puzzle needs a border around at least one cell")
		return result
	}

	for i, row := range rows {
		if len(row) != width {
			result.fail("Inconsistent row width at line %d: expected %d, got %d", i+1, width, len(row))
		}
	}
	if !result.Valid {
		return result
	}

	side := checkBorder(rows, &result)
	cells := collectVehicles(rows, &result)
	checkVehicles(cells, &result)
	if !result.Valid {
		return result
	}

	board, err := engine.Parse(text)
	if err != nil {
		result.fail("Parser rejected the puzzle: %v", err)
		return result
	}

	checkPlayer(board, side, &result)
	if !result.Valid {
		return result
	}

	solver := engine.NewSolver(engine.Options{MaxStates: maxStates})
	res, err := solver.Solve(context.Background(), board)
	switch {
	case errors.Is(err, engine.ErrNoSolution):
		result.fail("No solution exists (%d states explored)", res.Explored)
	case errors.Is(err, engine.ErrStateLimit):
		result.warn("No solution within %d states; solvability unknown", maxStates)
	case err != nil:
		result.fail("Search failed: %v", err)
	default:
		result.Info = append(result.Info,
			fmt.Sprintf("✓ Grid: %dx%d", board.Width(), board.Height()),
			fmt.Sprintf("✓ Vehicles: %d", len(board.Vehicles())),
			fmt.Sprintf("✓ Optimal solution: %d moves in %d steps", engine.TotalMoves(res.Steps), len(res.Steps)),
			fmt.Sprintf("✓ States explored: %d", res.Explored),
		)
	}

	return result
}

// Border sides an exit can sit on
const (
	sideTop    = "top"
	sideBottom = "bottom"
	sideLeft   = "left"
	sideRight  = "right"
)

// checkBorder verifies corners, edges and the single exit marker, and
// returns the side the exit is on
func checkBorder(rows [][]rune, result *ValidationResult) string {
	height, width := len(rows), len(rows[0])
	exits := 0
	side := ""

	for y, row := range rows {
		for x, r := range row {
			onTop, onBottom := y == 0, y == height-1
			onLeft, onRight := x == 0, x == width-1
			corner := (onTop || onBottom) && (onLeft || onRight)

			if r == engine.ExitMarker {
				exits++
				switch {
				case corner:
					result.fail("Exit marker in a corner at line %d, column %d", y+1, x+1)
				case onTop:
					side = sideTop
				case onLeft:
					side = sideLeft
				case onRight:
					side = sideRight
					result.warn("Exit on the right border: the player must leave the board entirely to solve")
				case onBottom:
					side = sideBottom
					result.warn("Exit on the bottom border: the player must leave the board entirely to solve")
				default:
					result.fail("Exit marker inside the board at line %d, column %d", y+1, x+1)
				}
				continue
			}

			switch {
			case corner:
				if r != engine.CornerBorder {
					result.fail("Expected '+' at corner line %d, column %d", y+1, x+1)
				}
			case onTop || onBottom:
				if r != engine.HorizBorder {
					result.fail("Expected '-' on the border at line %d, column %d, got %q", y+1, x+1, r)
				}
			case onLeft || onRight:
				if r != engine.VertBorder {
					result.fail("Expected '|' on the border at line %d, column %d, got %q", y+1, x+1, r)
				}
			}
		}
	}

	switch {
	case exits == 0:
		result.fail("No exit marker 'x' on the border")
	case exits > 1:
		result.fail("Found %d exit markers, expected exactly one", exits)
	}
	return side
}

// collectVehicles groups interior cells by vehicle rune, in interior
// coordinates
func collectVehicles(rows [][]rune, result *ValidationResult) map[string][]engine.Position {
	cells := make(map[string][]engine.Position)
	for y := 1; y < len(rows)-1; y++ {
		for x := 1; x < len(rows[y])-1; x++ {
			r := rows[y][x]
			switch r {
			case engine.EmptyCell, ' ', engine.ExitMarker:
				continue
			case engine.CornerBorder, engine.HorizBorder, engine.VertBorder:
				result.fail("Border character %q inside the board at line %d, column %d", r, y+1, x+1)
				continue
			}
			id := string(r)
			cells[id] = append(cells[id], engine.Position{X: x - 1, Y: y - 1})
		}
	}
	return cells
}

// checkVehicles requires every vehicle to be a straight line without gaps
func checkVehicles(cells map[string][]engine.Position, result *ValidationResult) {
	ids := make([]string, 0, len(cells))
	for id := range cells {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		vc := cells[id]
		if len(vc) == 1 {
			if id != engine.PlayerID {
				result.warn("Vehicle %s is a single cell and can only slide horizontally", id)
			}
			continue
		}

		sameRow, sameCol := true, true
		minX, maxX, minY, maxY := vc[0].X, vc[0].X, vc[0].Y, vc[0].Y
		for _, c := range vc[1:] {
			sameRow = sameRow && c.Y == vc[0].Y
			sameCol = sameCol && c.X == vc[0].X
			minX, maxX = min(minX, c.X), max(maxX, c.X)
			minY, maxY = min(minY, c.Y), max(maxY, c.Y)
		}

		switch {
		case !sameRow && !sameCol:
			result.fail("Vehicle %s is not a straight line", id)
		case sameRow && maxX-minX+1 != len(vc):
			result.fail("Vehicle %s has a gap", id)
		case sameCol && maxY-minY+1 != len(vc):
			result.fail("Vehicle %s has a gap", id)
		}
	}

	if _, ok := cells[engine.PlayerID]; !ok {
		result.fail("No player car %s", engine.PlayerID)
	}
}

// checkPlayer requires the player to slide along the exit's axis. A
// single-cell player counts as horizontal.
func checkPlayer(board *engine.Board, side string, result *ValidationResult) {
	player, _ := board.Player()
	exit := board.Exit()
	head := player.Head()

	var aligned bool
	switch side {
	case sideTop, sideBottom:
		aligned = player.Orientation == engine.Vertical && head.X == exit.X
	default:
		aligned = player.Orientation == engine.Horizontal && head.Y == exit.Y
	}
	if head == exit {
		aligned = true
	}

	if !aligned {
		result.fail("Player car at (%d,%d) %s can never reach the exit at (%d,%d)",
			head.X, head.Y, player.Orientation, exit.X, exit.Y)
	}
}

func printResult(w io.Writer, result ValidationResult) {
	fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)
	if result.Valid {
		fmt.Fprintln(w, "✅ VALID")
		for _, info := range result.Info {
			fmt.Fprintln(w, "  "+info)
		}
	} else {
		fmt.Fprintln(w, "❌ INVALID")
		for _, err := range result.Errors {
			fmt.Fprintln(w, "  ❌ "+err)
		}
	}
	for _, warning := range result.Warnings {
		fmt.Fprintln(w, "  ⚠️  "+warning)
	}
}

// validateDir lints every *.txt file in dir and reports whether all passed
func validateDir(dir string, maxStates int) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return false, fmt.Errorf("error finding puzzle files: %w", err)
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no puzzle files in %s", dir)
	}

	allValid := true
	for _, file := range files {
		result := validatePuzzleFile(file, maxStates)
		printResult(os.Stdout, result)
		allValid = allValid && result.Valid
	}
	return allValid, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "validate",
		Usage: "lint the puzzle files in a catalog directory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "../puzzles", Usage: "puzzle catalog directory"},
			&cli.IntFlag{Name: "max-states", Value: 200000, Usage: "search budget per puzzle"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			allValid, err := validateDir(cmd.String("dir"), int(cmd.Int("max-states")))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			fmt.Printf("\n%s\n", strings.Repeat("=", 40))
			if !allValid {
				return cli.Exit("❌ Some puzzles have errors", 1)
			}
			fmt.Println("✅ All puzzles are valid!")
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
