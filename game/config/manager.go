package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
	"github.com/wricardo/mcp-training/rushhour/game/service"
)

var (
	ErrPuzzleNotFound = service.ErrPuzzleNotFound
	ErrInvalidPuzzle  = service.ErrInvalidPuzzle
	ErrInvalidName    = fmt.Errorf("%w: bad name", service.ErrInvalidRequest)
)

const puzzleExt = ".txt"

// cached keeps the raw text next to the parsed board so it can be served
// back exactly as it was written
type cached struct {
	text  string
	board *engine.Board
}

// Manager loads puzzle files from a directory and caches them
type Manager struct {
	puzzleDir string
	puzzles   map[string]*cached
	mu        sync.RWMutex
}

// NewManager creates a new puzzle catalog over puzzleDir
func NewManager(puzzleDir string) (*Manager, error) {
	info, err := os.Stat(puzzleDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("puzzle directory does not exist: %s", puzzleDir)
		}
		return nil, fmt.Errorf("failed to stat puzzle directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("puzzle path is not a directory: %s", puzzleDir)
	}

	return &Manager{
		puzzleDir: puzzleDir,
		puzzles:   make(map[string]*cached),
	}, nil
}

// Dir returns the catalog directory
func (m *Manager) Dir() string {
	return m.puzzleDir
}

// LoadPuzzle returns the raw text and parsed board of a named puzzle
func (m *Manager) LoadPuzzle(name string) (string, *engine.Board, error) {
	name, err := normalizeName(name)
	if err != nil {
		return "", nil, err
	}

	m.mu.RLock()
	if p, exists := m.puzzles[name]; exists {
		m.mu.RUnlock()
		return p.text, p.board, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if p, exists := m.puzzles[name]; exists {
		return p.text, p.board, nil
	}

	data, err := os.ReadFile(filepath.Join(m.puzzleDir, name+puzzleExt))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("%w: %s", ErrPuzzleNotFound, name)
		}
		return "", nil, fmt.Errorf("failed to read puzzle file: %w", err)
	}

	text := string(data)
	board, err := engine.Parse(text)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %w", ErrInvalidPuzzle, name, err)
	}

	m.puzzles[name] = &cached{text: text, board: board}
	return text, board, nil
}

// ListPuzzles describes every parseable puzzle in the directory, sorted by ID
func (m *Manager) ListPuzzles() ([]*service.PuzzleInfo, error) {
	entries, err := os.ReadDir(m.puzzleDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read puzzle directory: %w", err)
	}

	var puzzles []*service.PuzzleInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), puzzleExt) {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), puzzleExt)
		_, board, err := m.LoadPuzzle(id)
		if err != nil {
			// Skip files that do not parse
			continue
		}

		puzzles = append(puzzles, &service.PuzzleInfo{
			ID:       id,
			Filename: entry.Name(),
			Width:    board.Width(),
			Height:   board.Height(),
			Vehicles: len(board.Vehicles()),
		})
	}

	sort.Slice(puzzles, func(i, j int) bool {
		return puzzles[i].ID < puzzles[j].ID
	})
	return puzzles, nil
}

// SavePuzzle validates text by parsing it and writes it to the directory
func (m *Manager) SavePuzzle(name, text string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}

	board, err := engine.Parse(text)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPuzzle, err)
	}

	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if err := os.WriteFile(filepath.Join(m.puzzleDir, name+puzzleExt), []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write puzzle file: %w", err)
	}

	m.mu.Lock()
	m.puzzles[name] = &cached{text: text, board: board}
	m.mu.Unlock()

	return nil
}

// RefreshCache drops every cached puzzle so the next load rereads the disk
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puzzles = make(map[string]*cached)
}

// normalizeName strips the extension and rejects names that would
// escape the catalog directory
func normalizeName(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), puzzleExt)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}
