package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
)

const (
	maxIDLength  = 64
	maxIDRetries = 3
)

// Options configures the solver service
type Options struct {
	// MaxStates bounds every search (0 = unbounded). A request may only
	// tighten it.
	MaxStates int

	// ProgressEvery is how often progress events are pushed (0 = never)
	ProgressEvery int

	Notifier ProgressNotifier
	Logger   zerolog.Logger
}

// solverServiceImpl implements the SolverService interface
type solverServiceImpl struct {
	store   SolutionStore
	catalog PuzzleCatalog
	opts    Options
}

// NewSolverService creates a new solver service instance. catalog may be
// nil, in which case only inline puzzles can be solved.
func NewSolverService(store SolutionStore, catalog PuzzleCatalog, opts Options) SolverService {
	return &solverServiceImpl{
		store:   store,
		catalog: catalog,
		opts:    opts,
	}
}

// Solve parses or loads the puzzle, runs the search and records the outcome.
// An exhausted or bounded search is a recorded outcome, not an error.
func (s *solverServiceImpl) Solve(ctx context.Context, req SolveRequest) (*SolveResult, error) {
	if (req.Puzzle == "") == (req.PuzzleName == "") {
		return nil, fmt.Errorf("%w: exactly one of puzzle or puzzle_name is required", ErrInvalidRequest)
	}
	if req.MaxStates < 0 {
		return nil, fmt.Errorf("%w: max_states cannot be negative", ErrInvalidRequest)
	}

	id := strings.ToLower(req.ID)
	if id != "" {
		if len(id) > maxIDLength || strings.ContainsAny(id, `/\. `) {
			return nil, fmt.Errorf("%w: invalid solution ID %q", ErrInvalidRequest, req.ID)
		}
		if s.store.Exists(id) {
			return nil, fmt.Errorf("%w: %s", ErrSolutionExists, id)
		}
	}

	board, err := s.resolveBoard(req)
	if err != nil {
		return nil, err
	}

	generated := id == ""
	if generated {
		id = s.store.NewID()
	}

	maxStates := s.opts.MaxStates
	if req.MaxStates > 0 && (maxStates == 0 || req.MaxStates < maxStates) {
		maxStates = req.MaxStates
	}

	solverOpts := engine.Options{MaxStates: maxStates}
	if s.opts.Notifier != nil && s.opts.ProgressEvery > 0 {
		solverOpts.ProgressEvery = s.opts.ProgressEvery
		solverOpts.OnProgress = func(p engine.Progress) {
			s.opts.Notifier.Broadcast(id, EventProgress, ProgressEvent{ID: id, Progress: p})
		}
	}

	log := s.opts.Logger.With().Str("solution", id).Str("puzzle", req.PuzzleName).Logger()
	log.Debug().Int("maxStates", maxStates).Msg("search started")

	res, err := engine.NewSolver(solverOpts).Solve(ctx, board)
	var outcome string
	switch {
	case err == nil:
		outcome = OutcomeSolved
	case errors.Is(err, engine.ErrNoSolution):
		outcome = OutcomeNoSolution
	case errors.Is(err, engine.ErrStateLimit):
		outcome = OutcomeLimitReached
	default:
		log.Warn().Err(err).Int("explored", res.Explored).Msg("search aborted")
		return nil, fmt.Errorf("search aborted: %w", err)
	}

	rec := &Record{
		ID:             id,
		PuzzleName:     req.PuzzleName,
		Puzzle:         board.Format(),
		Outcome:        outcome,
		Steps:          res.Steps,
		TotalMoves:     engine.TotalMoves(res.Steps),
		StatesExplored: res.Explored,
		Depth:          res.Depth,
		ElapsedMs:      res.Elapsed.Milliseconds(),
	}
	if rec.Steps == nil {
		rec.Steps = []engine.Step{}
	}

	stored, err := s.store.Create(rec)
	for attempt := 0; generated && errors.Is(err, ErrSolutionExists) && attempt < maxIDRetries; attempt++ {
		// a concurrent solve drew the same ID
		rec.ID = s.store.NewID()
		stored, err = s.store.Create(rec)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record solution: %w", err)
	}
	id = stored.ID

	result := toResult(stored)
	if s.opts.Notifier != nil {
		s.opts.Notifier.Broadcast(id, outcome, result)
	}

	log.Info().
		Str("outcome", outcome).
		Int("steps", len(result.Steps)).
		Int("moves", result.TotalMoves).
		Int("explored", res.Explored).
		Int("visited", res.Visited).
		Dur("elapsed", res.Elapsed).
		Msg("search finished")

	return result, nil
}

// resolveBoard parses the inline puzzle or loads the named one
func (s *solverServiceImpl) resolveBoard(req SolveRequest) (*engine.Board, error) {
	if req.PuzzleName != "" {
		if s.catalog == nil {
			return nil, fmt.Errorf("%w: no puzzle catalog configured", ErrPuzzleNotFound)
		}
		_, board, err := s.catalog.LoadPuzzle(req.PuzzleName)
		if err != nil {
			return nil, err
		}
		return board, nil
	}

	board, err := engine.Parse(req.Puzzle)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPuzzle, err)
	}
	return board, nil
}

// GetSolution retrieves a recorded solution
func (s *solverServiceImpl) GetSolution(ctx context.Context, id string) (*SolveResult, error) {
	rec, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateLastAccessed(id); err != nil {
		s.opts.Logger.Warn().Err(err).Str("solution", id).Msg("failed to update last access")
	}
	return toResult(rec), nil
}

// ListSolutions returns every recorded solution, oldest first
func (s *solverServiceImpl) ListSolutions(ctx context.Context) ([]*SolveResult, error) {
	records := s.store.List()
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	results := make([]*SolveResult, 0, len(records))
	for _, rec := range records {
		results = append(results, toResult(rec))
	}
	return results, nil
}

// DeleteSolution removes a recorded solution
func (s *solverServiceImpl) DeleteSolution(ctx context.Context, id string) error {
	return s.store.Delete(id)
}

// ListPuzzles returns the catalog contents
func (s *solverServiceImpl) ListPuzzles(ctx context.Context) ([]*PuzzleInfo, error) {
	if s.catalog == nil {
		return []*PuzzleInfo{}, nil
	}
	puzzles, err := s.catalog.ListPuzzles()
	if err != nil {
		return nil, err
	}
	if puzzles == nil {
		puzzles = []*PuzzleInfo{}
	}
	return puzzles, nil
}

// LoadPuzzle returns a catalog puzzle with its parsed vehicles
func (s *solverServiceImpl) LoadPuzzle(ctx context.Context, name string) (*PuzzleDetail, error) {
	if s.catalog == nil {
		return nil, fmt.Errorf("%w: %s", ErrPuzzleNotFound, name)
	}
	text, board, err := s.catalog.LoadPuzzle(name)
	if err != nil {
		return nil, err
	}
	return newPuzzleDetail(name, text, board), nil
}

// SavePuzzle validates and stores a puzzle in the catalog
func (s *solverServiceImpl) SavePuzzle(ctx context.Context, name, text string) (*PuzzleDetail, error) {
	if s.catalog == nil {
		return nil, fmt.Errorf("%w: no puzzle catalog configured", ErrInvalidRequest)
	}
	if err := s.catalog.SavePuzzle(name, text); err != nil {
		return nil, err
	}
	return s.LoadPuzzle(ctx, name)
}

func newPuzzleDetail(name, text string, board *engine.Board) *PuzzleDetail {
	id := strings.TrimSuffix(name, ".txt")
	blockers := engine.Blockers(board)
	if blockers == nil {
		blockers = []string{}
	}
	return &PuzzleDetail{
		PuzzleInfo: PuzzleInfo{
			ID:       id,
			Filename: id + ".txt",
			Width:    board.Width(),
			Height:   board.Height(),
			Vehicles: len(board.Vehicles()),
		},
		Text:     text,
		Exit:     board.Exit(),
		Blockers: blockers,
		Cars:     board.Vehicles(),
	}
}

func toResult(rec *Record) *SolveResult {
	steps := rec.Steps
	if steps == nil {
		steps = []engine.Step{}
	}
	return &SolveResult{
		ID:             rec.ID,
		PuzzleName:     rec.PuzzleName,
		Board:          rec.Puzzle,
		Solved:         rec.Outcome == OutcomeSolved,
		Steps:          steps,
		TotalMoves:     rec.TotalMoves,
		StatesExplored: rec.StatesExplored,
		Depth:          rec.Depth,
		ElapsedMs:      rec.ElapsedMs,
		Outcome:        rec.Outcome,
		CreatedAt:      rec.CreatedAt,
	}
}
