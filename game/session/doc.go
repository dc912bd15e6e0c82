// Package session stores the records of finished searches.
//
// The session package implements:
//   - Thread-safe record storage and retrieval
//   - Unique 4-character record ID generation
//   - Write-through persistence to JSON files or a SQL database
//   - Expiry of records that have not been read for a while
//
// Core Types:
//
// Manager is the in-memory store used by the solver service. Persistence
// is the storage interface behind it, implemented by FilePersistence (one
// JSON file per record) and SQLPersistence (gorm over SQLite or PostgreSQL).
//
// Usage:
//
//	persistence, err := session.OpenSQLite("solutions.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence, logger)
//	if err := manager.LoadPersisted(); err != nil {
//		log.Fatal(err)
//	}
//
// Record IDs are case-insensitive. CleanupExpired only evicts records from
// memory; a persisted record is loaded again on the next Get.
package session
