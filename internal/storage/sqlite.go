package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/treerec/internal/models"
)

// SQLiteActionLog implements ActionLog using SQLite.
type SQLiteActionLog struct {
	db   *sql.DB
	path string
}

// NewSQLiteActionLog opens or creates the journal at dbPath and initializes the schema.
// MemoryPath (or "") keeps the journal in memory. Parent directories are created if needed.
func NewSQLiteActionLog(dbPath string) (*SQLiteActionLog, error) {
	if dbPath == "" {
		dbPath = MemoryPath
	}
	if dbPath != MemoryPath {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if dbPath != MemoryPath {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL: %w", err)
		}
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteActionLog{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS actions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_actions_type ON actions(type);
	`
	_, err := db.Exec(schema)
	return err
}

// Append inserts action.
func (s *SQLiteActionLog) Append(ctx context.Context, action *models.Action) error {
	if !action.Type.Valid() {
		return fmt.Errorf("unknown action type: %q", action.Type)
	}
	if action.Timestamp.IsZero() {
		action.Timestamp = time.Now()
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO actions (type, content, timestamp) VALUES (?, ?, ?)`,
		string(action.Type), action.Content, action.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert action: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read action id: %w", err)
	}
	action.ID = id
	return nil
}

// List returns actions newest first with offset and limit. limit <= 0 returns all.
func (s *SQLiteActionLog) List(ctx context.Context, offset, limit int) ([]*models.Action, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, content, timestamp
		 FROM actions ORDER BY id DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	defer rows.Close()

	actions := []*models.Action{}
	for rows.Next() {
		var a models.Action
		var typ string
		if err := rows.Scan(&a.ID, &typ, &a.Content, &a.Timestamp); err != nil {
			return nil, err
		}
		a.Type = models.ActionType(typ)
		actions = append(actions, &a)
	}
	return actions, rows.Err()
}

// Count returns the total number of actions.
func (s *SQLiteActionLog) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM actions`).Scan(&count)
	return count, err
}

// CountByType returns the number of actions per type.
func (s *SQLiteActionLog) CountByType(ctx context.Context) (map[models.ActionType]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM actions GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count actions: %w", err)
	}
	defer rows.Close()

	out := make(map[models.ActionType]int64)
	for rows.Next() {
		var typ string
		var n int64
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		out[models.ActionType(typ)] = n
	}
	return out, rows.Err()
}

// Path returns the database path.
func (s *SQLiteActionLog) Path() string { return s.path }

// DiskUsage returns the size of the database files, 0 for an in-memory journal.
func (s *SQLiteActionLog) DiskUsage() (int64, error) {
	if s.path == MemoryPath {
		return 0, nil
	}
	return DiskUsageBytes(s.path, s.path+"-wal", s.path+"-shm")
}

// Close closes the database connection.
func (s *SQLiteActionLog) Close() error {
	return s.db.Close()
}
