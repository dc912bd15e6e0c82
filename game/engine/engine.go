package engine

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNoSolution = errors.New("no solution found")
	ErrStateLimit = errors.New("search state limit reached")
	ErrNilBoard   = errors.New("board cannot be nil")
)

// Engine provides the main interface for solving puzzles
type Engine interface {
	Solve(ctx context.Context, start *Board) (*Result, error)
}

// Options tune a Solver. The zero value searches without bounds and
// reports no progress.
type Options struct {
	// MaxStates stops the search after this many dequeued states (0 = no limit)
	MaxStates int

	// ProgressEvery calls OnProgress every N dequeued states (0 = never)
	ProgressEvery int
	OnProgress    func(Progress)
}

// Progress is a snapshot of a running search
type Progress struct {
	Explored int `json:"explored"`
	Frontier int `json:"frontier"`
	Visited  int `json:"visited"`
	Depth    int `json:"depth"`
}

// Result is the outcome of a search. Steps and Moves are only set when
// Solved is true; the counters are always filled in.
type Result struct {
	Solved   bool          `json:"solved"`
	Steps    []Step        `json:"steps"`
	Moves    []Move        `json:"moves"`
	Final    *Board        `json:"-"`
	Explored int           `json:"explored"`
	Visited  int           `json:"visited"`
	Depth    int           `json:"depth"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Solver runs a breadth-first search over board states
type Solver struct {
	opts Options
}

// NewSolver creates a solver with the given options
func NewSolver(opts Options) *Solver {
	return &Solver{opts: opts}
}

// record is a visited-set entry: the board and the key it was reached from
type record struct {
	board  *Board
	parent string
	root   bool
	depth  int
}

// Solve searches for a shortest sequence of single-cell slides that puts
// the player on the exit. The returned Result is non-nil even when err is
// set, so callers can report how much of the state space was covered.
//
// Errors: ErrNoSolution when the reachable states are exhausted,
// ErrStateLimit when Options.MaxStates is hit, or ctx.Err().
func (s *Solver) Solve(ctx context.Context, start *Board) (*Result, error) {
	began := time.Now()
	result := &Result{}
	if start == nil {
		return result, ErrNilBoard
	}

	rootKey := start.Key()
	visited := map[string]*record{
		rootKey: {board: start, root: true},
	}
	queue := []string{rootKey}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			result.Visited = len(visited)
			result.Elapsed = time.Since(began)
			return result, err
		}

		key := queue[0]
		queue = queue[1:]
		current := visited[key]
		result.Explored++
		result.Depth = current.depth

		if s.opts.OnProgress != nil && s.opts.ProgressEvery > 0 && result.Explored%s.opts.ProgressEvery == 0 {
			s.opts.OnProgress(Progress{
				Explored: result.Explored,
				Frontier: len(queue),
				Visited:  len(visited),
				Depth:    current.depth,
			})
		}

		if current.board.IsSolved() {
			path := reconstruct(visited, key)
			result.Solved = true
			result.Moves = pathMoves(path)
			result.Steps = Compress(result.Moves)
			result.Final = current.board
			result.Visited = len(visited)
			result.Elapsed = time.Since(began)
			return result, nil
		}

		if s.opts.MaxStates > 0 && result.Explored >= s.opts.MaxStates {
			result.Visited = len(visited)
			result.Elapsed = time.Since(began)
			return result, ErrStateLimit
		}

		for _, next := range current.board.NextStates() {
			nk := next.Key()
			if _, seen := visited[nk]; seen {
				continue
			}
			visited[nk] = &record{board: next, parent: key, depth: current.depth + 1}
			queue = append(queue, nk)
		}
	}

	result.Visited = len(visited)
	result.Elapsed = time.Since(began)
	return result, ErrNoSolution
}

// Solve runs an unbounded search with default options
func Solve(ctx context.Context, start *Board) (*Result, error) {
	return NewSolver(Options{}).Solve(ctx, start)
}
