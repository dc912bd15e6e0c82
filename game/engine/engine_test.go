package engine

import (
	"context"
	"errors"
	"testing"
)

func TestSolve_Classic(t *testing.T) {
	board := mustParse(t, classicPuzzle)

	result, err := Solve(context.Background(), board)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}

	expected := []Step{
		{"L", Left, 3},
		{"B", Left, 2},
		{"G", Up, 3},
		{"B", Right, 2},
		{"X", Up, 1},
		{"U", Left, 1},
		{"R", Down, 1},
		{"B", Right, 1},
		{"X", Up, 1},
		{"U", Left, 3},
		{"X", Down, 1},
		{"B", Left, 3},
		{"G", Down, 1},
		{"L", Right, 3},
		{"G", Down, 2},
		{"B", Right, 3},
		{"X", Up, 3},
	}

	if len(result.Steps) != len(expected) {
		t.Fatalf("Expected %d steps, got %d: %v", len(expected), len(result.Steps), result.Steps)
	}
	for i := range expected {
		if result.Steps[i] != expected[i] {
			t.Errorf("Step %d: expected %v, got %v", i+1, expected[i], result.Steps[i])
		}
	}

	if total := TotalMoves(result.Steps); total != 34 || len(result.Moves) != 34 {
		t.Errorf("Expected 34 atomic moves, got %d (moves slice %d)", total, len(result.Moves))
	}
	if !result.Solved || result.Final == nil || !result.Final.IsSolved() {
		t.Error("Expected a solved final board")
	}
	if result.Depth != 34 {
		t.Errorf("Expected goal depth 34, got %d", result.Depth)
	}
	if result.Explored == 0 || result.Visited < result.Explored {
		t.Errorf("Unexpected counters explored=%d visited=%d", result.Explored, result.Visited)
	}
}

func TestSolve_SmallPuzzles(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []Step
	}{
		{
			name:     "already solved",
			text:     "+x--+\n|X..|\n|X..|\n+---+",
			expected: []Step{},
		},
		{
			name:     "straight up",
			text:     "+x----+\n|.....|\n|X....|\n|X.AA.|\n+-----+",
			expected: []Step{{"X", Up, 1}},
		},
		{
			name:     "clear the way first",
			text:     "+x---+\n|AA..|\n|X...|\n|X...|\n+----+",
			expected: []Step{{"A", Right, 1}, {"X", Up, 1}},
		},
		{
			name:     "left exit",
			text:     "+----+\nx..XX|\n|....|\n+----+",
			expected: []Step{{"X", Left, 2}},
		},
		{
			name:     "out through the right border",
			text:     "+---+\n|...|\n|..Xx\n+---+",
			expected: []Step{{"X", Right, 1}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := Solve(context.Background(), mustParse(t, test.text))
			if err != nil {
				t.Fatalf("Solve returned error: %v", err)
			}
			if len(result.Steps) != len(test.expected) {
				t.Fatalf("Expected steps %v, got %v", test.expected, result.Steps)
			}
			for i := range test.expected {
				if result.Steps[i] != test.expected[i] {
					t.Errorf("Step %d: expected %v, got %v", i+1, test.expected[i], result.Steps[i])
				}
			}
		})
	}
}

func TestSolve_NoSolution(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{
			name: "player boxed in",
			text: "+x--+\n|AAB|\n|XCB|\n|XCD|\n+---+",
		},
		{
			name: "player on the wrong axis",
			text: "+x---+\n|.A..|\n|.A..|\n|XX..|\n+----+",
		},
		{
			name: "no player at all",
			text: "+x---+\n|AA..|\n|..B.|\n|..B.|\n+----+",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := Solve(context.Background(), mustParse(t, test.text))
			if !errors.Is(err, ErrNoSolution) {
				t.Fatalf("Expected ErrNoSolution, got %v", err)
			}
			if result == nil {
				t.Fatal("Expected counters even without a solution")
			}
			if result.Solved || len(result.Steps) != 0 {
				t.Error("Expected no steps")
			}
			if result.Explored != result.Visited {
				t.Errorf("An exhausted search dequeues every visited state: explored=%d visited=%d",
					result.Explored, result.Visited)
			}
		})
	}
}

func TestSolve_BoxedInExploresOnlyRoot(t *testing.T) {
	result, err := Solve(context.Background(), mustParse(t, "+x--+\n|AAB|\n|XCB|\n|XCD|\n+---+"))
	if !errors.Is(err, ErrNoSolution) {
		t.Fatalf("Expected ErrNoSolution, got %v", err)
	}
	if result.Explored != 1 {
		t.Errorf("Expected a single explored state, got %d", result.Explored)
	}
}

func TestSolver_StateLimit(t *testing.T) {
	solver := NewSolver(Options{MaxStates: 10})

	result, err := solver.Solve(context.Background(), mustParse(t, classicPuzzle))
	if !errors.Is(err, ErrStateLimit) {
		t.Fatalf("Expected ErrStateLimit, got %v", err)
	}
	if result.Explored != 10 {
		t.Errorf("Expected 10 explored states, got %d", result.Explored)
	}
}

func TestSolver_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSolver(Options{}).Solve(ctx, mustParse(t, classicPuzzle))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestSolver_Progress(t *testing.T) {
	var reports []Progress
	solver := NewSolver(Options{
		ProgressEvery: 100,
		OnProgress: func(p Progress) {
			reports = append(reports, p)
		},
	})

	result, err := solver.Solve(context.Background(), mustParse(t, classicPuzzle))
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}

	if len(reports) != result.Explored/100 {
		t.Errorf("Expected %d progress reports, got %d", result.Explored/100, len(reports))
	}
	for i, p := range reports {
		if p.Explored != (i+1)*100 {
			t.Errorf("Report %d: expected explored %d, got %d", i, (i+1)*100, p.Explored)
		}
		if i > 0 && p.Depth < reports[i-1].Depth {
			t.Error("BFS depth must never decrease")
		}
	}
}

func TestSolve_NilBoard(t *testing.T) {
	if _, err := Solve(context.Background(), nil); !errors.Is(err, ErrNilBoard) {
		t.Errorf("Expected ErrNilBoard, got %v", err)
	}
}
