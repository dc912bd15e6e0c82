package session

import "github.com/wricardo/mcp-training/rushhour/game/service"

// Persistence defines the interface for persisting solution records
type Persistence interface {
	// Save persists a record, replacing any record with the same ID
	Save(rec *service.Record) error

	// Load retrieves a record from storage by ID
	Load(id string) (*service.Record, error)

	// Delete removes a record from storage
	Delete(id string) error

	// ListAll returns all persisted record IDs
	ListAll() ([]string, error)

	// Exists checks if a record exists in storage
	Exists(id string) bool
}
