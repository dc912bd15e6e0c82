package service

import (
	"context"
	"errors"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
)

var (
	ErrInvalidPuzzle    = errors.New("invalid puzzle")
	ErrPuzzleNotFound   = errors.New("puzzle not found")
	ErrSolutionNotFound = errors.New("solution not found")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrSolutionExists   = errors.New("solution already exists")
)

// SolverService defines all solver operations exposed to transports
type SolverService interface {
	// Solving
	Solve(ctx context.Context, req SolveRequest) (*SolveResult, error)

	// Recorded solutions
	GetSolution(ctx context.Context, id string) (*SolveResult, error)
	ListSolutions(ctx context.Context) ([]*SolveResult, error)
	DeleteSolution(ctx context.Context, id string) error

	// Puzzle catalog
	ListPuzzles(ctx context.Context) ([]*PuzzleInfo, error)
	LoadPuzzle(ctx context.Context, name string) (*PuzzleDetail, error)
	SavePuzzle(ctx context.Context, name, text string) (*PuzzleDetail, error)
}

// SolutionStore defines solution record storage operations
type SolutionStore interface {
	Create(rec *Record) (*Record, error)
	Get(id string) (*Record, error)
	List() []*Record
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Exists(id string) bool
	NewID() string
}

// PuzzleCatalog loads and stores named puzzles
type PuzzleCatalog interface {
	LoadPuzzle(name string) (string, *engine.Board, error)
	ListPuzzles() ([]*PuzzleInfo, error)
	SavePuzzle(name, text string) error
}

// ProgressNotifier receives search progress and outcome events.
// The websocket hub satisfies it.
type ProgressNotifier interface {
	Broadcast(channel, event string, data any)
}
