package service

import (
	"time"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
)

// Outcome values of a finished search
const (
	OutcomeSolved       = "solved"
	OutcomeNoSolution   = "no_solution"
	OutcomeLimitReached = "limit_reached"
)

// Event names pushed through the ProgressNotifier
const (
	EventProgress = "progress"
)

// SolveRequest asks for a puzzle to be solved. Exactly one of Puzzle or
// PuzzleName must be set. ID is optional; when empty the store picks one.
type SolveRequest struct {
	ID         string `json:"id,omitempty"`
	Puzzle     string `json:"puzzle,omitempty"`
	PuzzleName string `json:"puzzle_name,omitempty"`
	MaxStates  int    `json:"max_states,omitempty"`
}

// SolveResult is the outcome of a search as seen by clients
type SolveResult struct {
	ID             string        `json:"id"`
	PuzzleName     string        `json:"puzzle_name,omitempty"`
	Board          string        `json:"board"`
	Solved         bool          `json:"solved"`
	Steps          []engine.Step `json:"steps"`
	TotalMoves     int           `json:"total_moves"`
	StatesExplored int           `json:"states_explored"`
	Depth          int           `json:"depth"`
	ElapsedMs      int64         `json:"elapsed_ms"`
	Outcome        string        `json:"outcome"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Record is a stored search result
type Record struct {
	ID             string        `json:"id"`
	PuzzleName     string        `json:"puzzle_name,omitempty"`
	Puzzle         string        `json:"puzzle"`
	Outcome        string        `json:"outcome"`
	Steps          []engine.Step `json:"steps"`
	TotalMoves     int           `json:"total_moves"`
	StatesExplored int           `json:"states_explored"`
	Depth          int           `json:"depth"`
	ElapsedMs      int64         `json:"elapsed_ms"`
	CreatedAt      time.Time     `json:"created_at"`
	LastAccessedAt time.Time     `json:"last_accessed_at"`
}

// PuzzleInfo provides information about a catalog puzzle
type PuzzleInfo struct {
	ID       string `json:"id"` // The identifier to use for puzzle_name
	Filename string `json:"filename"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Vehicles int    `json:"vehicles"`
}

// PuzzleDetail is a catalog puzzle with its text and parsed vehicles
type PuzzleDetail struct {
	PuzzleInfo
	Text     string           `json:"text"`
	Exit     engine.Position  `json:"exit"`
	Blockers []string         `json:"blockers"`
	Cars     []engine.Vehicle `json:"cars"`
}

// ProgressEvent is broadcast while a search runs
type ProgressEvent struct {
	ID string `json:"id"`
	engine.Progress
}
