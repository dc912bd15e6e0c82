package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/rushhour/game/service"
)

// FilePersistence implements Persistence with one JSON file per record
type FilePersistence struct {
	dir string
}

// NewFilePersistence creates a new file-based persistence layer
func NewFilePersistence(dir string) (*FilePersistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create solutions directory: %w", err)
	}
	return &FilePersistence{dir: dir}, nil
}

// Save persists a record to a JSON file
func (fp *FilePersistence) Save(rec *service.Record) error {
	if rec == nil {
		return errors.New("record cannot be nil")
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal solution: %w", err)
	}

	// Write to a temp file first, then rename over the old record
	path := fp.filePath(rec.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write solution file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace solution file: %w", err)
	}
	return nil
}

// Load retrieves a record from its JSON file
func (fp *FilePersistence) Load(id string) (*service.Record, error) {
	data, err := os.ReadFile(fp.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSolutionNotFound, id)
		}
		return nil, fmt.Errorf("failed to read solution file: %w", err)
	}

	var rec service.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal solution: %w", err)
	}
	return &rec, nil
}

// Delete removes a record file
func (fp *FilePersistence) Delete(id string) error {
	if !fp.Exists(id) {
		return fmt.Errorf("%w: %s", ErrSolutionNotFound, id)
	}
	if err := os.Remove(fp.filePath(id)); err != nil {
		return fmt.Errorf("failed to remove solution file: %w", err)
	}
	return nil
}

// ListAll returns all persisted record IDs
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read solutions directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return ids, nil
}

// Exists checks if a record file exists
func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(fp.filePath(id))
	return err == nil
}

func (fp *FilePersistence) filePath(id string) string {
	return filepath.Join(fp.dir, strings.ToLower(id)+".json")
}
