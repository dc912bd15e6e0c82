package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/rushhour/game/service"
)

var (
	ErrSolutionNotFound      = service.ErrSolutionNotFound
	ErrSolutionAlreadyExists = service.ErrSolutionExists
	ErrInvalidSolutionID     = fmt.Errorf("%w: invalid solution ID", service.ErrInvalidRequest)
)

// Manager keeps solution records in memory with optional write-through
// persistence. IDs are case-insensitive.
type Manager struct {
	records     map[string]*service.Record
	persistence Persistence
	logger      zerolog.Logger
	now         func() time.Time
	mu          sync.RWMutex
}

// NewManager creates a new in-memory record manager
func NewManager() *Manager {
	return &Manager{
		records: make(map[string]*service.Record),
		logger:  zerolog.Nop(),
		now:     time.Now,
	}
}

// NewManagerWithPersistence creates a new record manager backed by persistence
func NewManagerWithPersistence(persistence Persistence, logger zerolog.Logger) *Manager {
	m := NewManager()
	m.persistence = persistence
	m.logger = logger
	return m
}

// NewID generates an unused 4-character hex ID
func (m *Manager) NewID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for {
		id := generateID()
		if !m.takenLocked(id) {
			return id
		}
	}
}

// Exists reports whether id is held in memory or on disk
func (m *Manager) Exists(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.takenLocked(id)
}

// Create stores a new record, assigning an ID when rec.ID is empty
func (m *Manager) Create(rec *service.Record) (*service.Record, error) {
	if rec == nil {
		return nil, errors.New("record cannot be nil")
	}
	if strings.ContainsAny(rec.ID, `/\. `) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSolutionID, rec.ID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID == "" {
		rec.ID = generateID()
		for m.takenLocked(rec.ID) {
			rec.ID = generateID()
		}
	} else if m.takenLocked(rec.ID) {
		return nil, ErrSolutionAlreadyExists
	}

	now := m.now()
	rec.CreatedAt = now
	rec.LastAccessedAt = now
	m.records[strings.ToLower(rec.ID)] = rec

	// Auto-save if persistence is enabled
	if m.persistence != nil {
		if err := m.persistence.Save(rec); err != nil {
			// Log error but don't fail the creation
			m.logger.Warn().Err(err).Str("solution", rec.ID).Msg("failed to persist solution")
		}
	}

	return rec, nil
}

// Get retrieves a record by ID, falling back to persistence
func (m *Manager) Get(id string) (*service.Record, error) {
	m.mu.RLock()
	rec, exists := m.records[strings.ToLower(id)]
	m.mu.RUnlock()

	if exists {
		return rec, nil
	}

	// Try loading from persistence if not in memory
	if m.persistence != nil && m.persistence.Exists(id) {
		rec, err := m.persistence.Load(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted solution: %w", err)
		}

		m.mu.Lock()
		m.records[strings.ToLower(id)] = rec
		m.mu.Unlock()

		return rec, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrSolutionNotFound, id)
}

// List returns all records held in memory
func (m *Manager) List() []*service.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Record, 0, len(m.records))
	for _, rec := range m.records {
		result = append(result, rec)
	}
	return result
}

// Delete removes a record from memory and persistence
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	_, inMemory := m.records[lowerID]
	delete(m.records, lowerID)

	if m.persistence != nil && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted solution: %w", err)
		}
		return nil
	}

	if !inMemory {
		return fmt.Errorf("%w: %s", ErrSolutionNotFound, id)
	}
	return nil
}

// UpdateLastAccessed updates the last accessed time for a record
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, exists := m.records[strings.ToLower(id)]
	if !exists {
		return fmt.Errorf("%w: %s", ErrSolutionNotFound, id)
	}

	rec.LastAccessedAt = m.now()

	if m.persistence != nil {
		if err := m.persistence.Save(rec); err != nil {
			m.logger.Warn().Err(err).Str("solution", id).Msg("failed to persist access update")
		}
	}
	return nil
}

// CleanupExpired removes records from memory that haven't been accessed
// within maxAge. Persisted copies are kept.
func (m *Manager) CleanupExpired(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	removed := 0
	for id, rec := range m.records {
		if rec.LastAccessedAt.Before(cutoff) {
			delete(m.records, id)
			removed++
		}
	}
	return removed
}

// Count returns the number of records in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// LoadPersisted loads every persisted record into memory
func (m *Manager) LoadPersisted() error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted solutions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, id := range ids {
		if m.existsLocked(id) {
			continue
		}

		rec, err := m.persistence.Load(id)
		if err != nil {
			m.logger.Warn().Err(err).Str("solution", id).Msg("failed to load persisted solution")
			continue
		}

		m.records[strings.ToLower(id)] = rec
		loaded++
	}

	if loaded > 0 {
		m.logger.Info().Int("count", loaded).Msg("loaded persisted solutions")
	}
	return nil
}

func (m *Manager) existsLocked(id string) bool {
	_, exists := m.records[strings.ToLower(id)]
	return exists
}

// takenLocked also consults persistence so evicted records keep their IDs
func (m *Manager) takenLocked(id string) bool {
	return m.existsLocked(id) || (m.persistence != nil && m.persistence.Exists(id))
}

// generateID generates a random 4-character hex ID
func generateID() string {
	b := make([]byte, 2)
	rand.Read(b)
	return hex.EncodeToString(b)
}
