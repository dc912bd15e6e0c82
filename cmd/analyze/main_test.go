package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
)

func mustParse(t *testing.T, text string) *engine.Board {
	t.Helper()
	board, err := engine.Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return board
}

func TestAnalyzePuzzle_Classic(t *testing.T) {
	a, err := analyzePuzzle(context.Background(), "classic", mustParse(t, engine.ExamplePuzzle), 0)
	if err != nil {
		t.Fatalf("analyzePuzzle failed: %v", err)
	}

	if a.Width != 6 || a.Height != 6 {
		t.Errorf("Expected 6x6 grid, got %dx%d", a.Width, a.Height)
	}
	if a.Vehicles != 6 {
		t.Errorf("Expected 6 vehicles, got %d", a.Vehicles)
	}
	if a.ExitDistance != 4 {
		t.Errorf("Expected exit distance 4, got %d", a.ExitDistance)
	}
	if len(a.Blockers) != 1 || a.Blockers[0] != "B" {
		t.Errorf("Expected blockers [B], got %v", a.Blockers)
	}
	if a.Outcome != outcomeSolved || a.Moves != 34 || a.Steps != 17 {
		t.Errorf("Unexpected solution %s: %d moves in %d steps", a.Outcome, a.Moves, a.Steps)
	}
}

func TestAnalyzePuzzle_Outcomes(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxStates int
		outcome   string
		distance  int
	}{
		{"boxed in", "+x--+\n|AAB|\n|XCB|\n|XCD|\n+---+", 0, outcomeNoSolution, 1},
		{"search limit", engine.ExamplePuzzle, 10, outcomeLimit, 4},
		{"no player", "+x---+\n|AA..|\n|..B.|\n|..B.|\n+----+", 0, outcomeNoSolution, -1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			a, err := analyzePuzzle(context.Background(), test.name, mustParse(t, test.text), test.maxStates)
			if err != nil {
				t.Fatalf("analyzePuzzle failed: %v", err)
			}
			if a.Outcome != test.outcome {
				t.Errorf("Expected outcome %q, got %q", test.outcome, a.Outcome)
			}
			if a.ExitDistance != test.distance {
				t.Errorf("Expected exit distance %d, got %d", test.distance, a.ExitDistance)
			}
		})
	}
}

func TestAnalyzeCatalog(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"classic.txt": engine.ExamplePuzzle,
		"boxed.txt":   "+x--+\n|AAB|\n|XCB|\n|XCD|\n+---+",
	}
	for name, text := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	var out bytes.Buffer
	if err := analyzeCatalog(context.Background(), &out, dir, 0); err != nil {
		t.Fatalf("analyzeCatalog failed: %v", err)
	}

	output := out.String()
	for _, want := range []string{
		"=== Analyzing boxed.txt ===",
		"=== Analyzing classic.txt ===",
		"Optimal solution: 34 moves in 17 steps",
		"CRITICAL: no solution exists",
		"Blocking the player: B",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output:\n%s", want, output)
		}
	}
	if strings.Index(output, "boxed.txt") > strings.Index(output, "classic.txt") {
		t.Error("Expected puzzles in name order")
	}
}

func TestAnalyzeCatalog_MissingDir(t *testing.T) {
	var out bytes.Buffer
	if err := analyzeCatalog(context.Background(), &out, "/non/existent/path", 0); err == nil {
		t.Error("Expected error for a missing directory")
	}
}
