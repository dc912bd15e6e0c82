package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
	"github.com/wricardo/mcp-training/rushhour/game/service"
)

// solutionRow is the table layout of a stored record
type solutionRow struct {
	ID             string `gorm:"primaryKey;size:32"`
	PuzzleName     string `gorm:"size:255;index"`
	Puzzle         string `gorm:"type:text"`
	Outcome        string `gorm:"size:32;index"`
	Steps          datatypes.JSON
	TotalMoves     int
	StatesExplored int
	Depth          int
	ElapsedMs      int64
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

func (solutionRow) TableName() string {
	return "solutions"
}

// SQLPersistence implements Persistence on a gorm database
type SQLPersistence struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) a SQLite database file. An empty path
// opens a private in-memory database.
func OpenSQLite(path string) (*SQLPersistence, error) {
	if path == "" {
		path = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == "file::memory:" {
		// Every new connection to :memory: is a fresh empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sql interface: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return NewSQLPersistence(db)
}

// OpenPostgres connects to PostgreSQL with a libpq-style or URL DSN
func OpenPostgres(dsn string) (*SQLPersistence, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return NewSQLPersistence(db)
}

// NewSQLPersistence migrates the solutions table on an open database
func NewSQLPersistence(db *gorm.DB) (*SQLPersistence, error) {
	if err := db.AutoMigrate(&solutionRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate solutions table: %w", err)
	}
	return &SQLPersistence{db: db}, nil
}

// Close releases the underlying connection pool
func (sp *SQLPersistence) Close() error {
	sqlDB, err := sp.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save upserts a record
func (sp *SQLPersistence) Save(rec *service.Record) error {
	if rec == nil {
		return errors.New("record cannot be nil")
	}

	steps, err := json.Marshal(rec.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}

	row := solutionRow{
		ID:             strings.ToLower(rec.ID),
		PuzzleName:     rec.PuzzleName,
		Puzzle:         rec.Puzzle,
		Outcome:        rec.Outcome,
		Steps:          datatypes.JSON(steps),
		TotalMoves:     rec.TotalMoves,
		StatesExplored: rec.StatesExplored,
		Depth:          rec.Depth,
		ElapsedMs:      rec.ElapsedMs,
		CreatedAt:      rec.CreatedAt,
		LastAccessedAt: rec.LastAccessedAt,
	}
	if err := sp.db.Save(&row).Error; err != nil {
		return fmt.Errorf("failed to save solution: %w", err)
	}
	return nil
}

// Load retrieves a record by ID
func (sp *SQLPersistence) Load(id string) (*service.Record, error) {
	var row solutionRow
	err := sp.db.Where("id = ?", strings.ToLower(id)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSolutionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load solution: %w", err)
	}

	steps := []engine.Step{}
	if len(row.Steps) > 0 {
		if err := json.Unmarshal(row.Steps, &steps); err != nil {
			return nil, fmt.Errorf("failed to unmarshal steps: %w", err)
		}
	}

	return &service.Record{
		ID:             row.ID,
		PuzzleName:     row.PuzzleName,
		Puzzle:         row.Puzzle,
		Outcome:        row.Outcome,
		Steps:          steps,
		TotalMoves:     row.TotalMoves,
		StatesExplored: row.StatesExplored,
		Depth:          row.Depth,
		ElapsedMs:      row.ElapsedMs,
		CreatedAt:      row.CreatedAt,
		LastAccessedAt: row.LastAccessedAt,
	}, nil
}

// Delete removes a record
func (sp *SQLPersistence) Delete(id string) error {
	res := sp.db.Where("id = ?", strings.ToLower(id)).Delete(&solutionRow{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete solution: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrSolutionNotFound, id)
	}
	return nil
}

// ListAll returns every stored record ID in creation order
func (sp *SQLPersistence) ListAll() ([]string, error) {
	var ids []string
	if err := sp.db.Model(&solutionRow{}).Order("created_at, id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list solutions: %w", err)
	}
	return ids, nil
}

// Exists checks if a record is stored
func (sp *SQLPersistence) Exists(id string) bool {
	var count int64
	if err := sp.db.Model(&solutionRow{}).Where("id = ?", strings.ToLower(id)).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}
