package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
	"github.com/wricardo/mcp-training/rushhour/game/service"
)

func newTestRecord(id string) *service.Record {
	return &service.Record{
		ID:         id,
		PuzzleName: "classic",
		Puzzle:     "+x--+\n|X..|\n|X..|\n+---+\n",
		Outcome:    service.OutcomeSolved,
		Steps: []engine.Step{
			{VehicleID: "A", Heading: engine.Right, Count: 1},
			{VehicleID: "X", Heading: engine.Up, Count: 2},
		},
		TotalMoves:     3,
		StatesExplored: 42,
		Depth:          3,
	}
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()

	t.Run("generated ID", func(t *testing.T) {
		rec, err := manager.Create(newTestRecord(""))
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if len(rec.ID) != 4 {
			t.Errorf("Expected 4-character ID, got %q", rec.ID)
		}
		if rec.CreatedAt.IsZero() || !rec.LastAccessedAt.Equal(rec.CreatedAt) {
			t.Error("Expected timestamps to be set")
		}
	})

	t.Run("explicit ID", func(t *testing.T) {
		rec, err := manager.Create(newTestRecord("beef"))
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if rec.ID != "beef" {
			t.Errorf("Expected ID beef, got %q", rec.ID)
		}
	})

	t.Run("duplicate ID is case-insensitive", func(t *testing.T) {
		if _, err := manager.Create(newTestRecord("BEEF")); !errors.Is(err, ErrSolutionAlreadyExists) {
			t.Errorf("Expected ErrSolutionAlreadyExists, got %v", err)
		}
	})

	t.Run("invalid ID", func(t *testing.T) {
		if _, err := manager.Create(newTestRecord("../x")); !errors.Is(err, ErrInvalidSolutionID) {
			t.Errorf("Expected ErrInvalidSolutionID, got %v", err)
		}
		if !errors.Is(ErrInvalidSolutionID, service.ErrInvalidRequest) || !errors.Is(ErrSolutionAlreadyExists, service.ErrSolutionExists) {
			t.Error("Create errors must match the service sentinels")
		}
	})

	t.Run("exists", func(t *testing.T) {
		if !manager.Exists("BEEF") {
			t.Error("Expected beef to exist")
		}
		if manager.Exists("zzzz") {
			t.Error("Expected zzzz not to exist")
		}
	})

	t.Run("nil record", func(t *testing.T) {
		if _, err := manager.Create(nil); err == nil {
			t.Error("Expected error for nil record")
		}
	})

	if manager.Count() != 2 {
		t.Errorf("Expected 2 records, got %d", manager.Count())
	}
}

func TestManager_GetListDelete(t *testing.T) {
	manager := NewManager()
	manager.Create(newTestRecord("aaaa"))
	manager.Create(newTestRecord("bbbb"))

	rec, err := manager.Get("AAAA")
	if err != nil || rec.ID != "aaaa" {
		t.Fatalf("Expected case-insensitive lookup, got %v (err=%v)", rec, err)
	}

	if _, err := manager.Get("zzzz"); !errors.Is(err, ErrSolutionNotFound) {
		t.Errorf("Expected ErrSolutionNotFound, got %v", err)
	}
	if !errors.Is(ErrSolutionNotFound, service.ErrSolutionNotFound) {
		t.Error("Store errors must match the service sentinel")
	}

	if got := len(manager.List()); got != 2 {
		t.Errorf("Expected 2 listed records, got %d", got)
	}

	if err := manager.Delete("aaaa"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := manager.Delete("aaaa"); !errors.Is(err, ErrSolutionNotFound) {
		t.Errorf("Expected ErrSolutionNotFound on second delete, got %v", err)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 record left, got %d", manager.Count())
	}
}

func TestManager_NewID(t *testing.T) {
	manager := NewManager()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := manager.NewID()
		if len(id) != 4 || strings.Trim(id, "0123456789abcdef") != "" {
			t.Fatalf("Expected 4 hex characters, got %q", id)
		}
		if _, err := manager.Create(newTestRecord(id)); err != nil {
			t.Fatalf("Create(%s) returned error: %v", id, err)
		}
		seen[id] = true
	}
	if len(seen) != 50 {
		t.Errorf("Expected 50 unique IDs, got %d", len(seen))
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager()
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return clock }

	manager.Create(newTestRecord("old1"))
	manager.Create(newTestRecord("old2"))

	clock = clock.Add(2 * time.Hour)
	manager.Create(newTestRecord("new1"))
	manager.UpdateLastAccessed("old2")

	clock = clock.Add(30 * time.Minute)
	removed := manager.CleanupExpired(time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 expired record, got %d", removed)
	}
	if _, err := manager.Get("old1"); err == nil {
		t.Error("Expected old1 to be evicted")
	}
	if _, err := manager.Get("old2"); err != nil {
		t.Error("Accessed record must survive cleanup")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	if err := manager.UpdateLastAccessed("none"); !errors.Is(err, ErrSolutionNotFound) {
		t.Errorf("Expected ErrSolutionNotFound, got %v", err)
	}
}

func TestManager_Concurrent(t *testing.T) {
	manager := NewManager()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := manager.Create(newTestRecord(""))
			if err != nil {
				t.Errorf("Create returned error: %v", err)
				return
			}
			manager.Get(rec.ID)
			manager.UpdateLastAccessed(rec.ID)
			manager.List()
		}()
	}
	wg.Wait()

	if manager.Count() != 20 {
		t.Errorf("Expected 20 records, got %d", manager.Count())
	}
}
