package searchlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS logs_bot (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	code    INTEGER NOT NULL,
	created INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_logs_bot_user_created ON logs_bot (user_id, created);
`

// SQLite stores the log in a local file. created is kept as unix seconds.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens or creates the database at path. Parent directories are
// created if missing.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("searchlog: sqlite path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("searchlog: failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("searchlog: failed to open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("searchlog: failed to enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("searchlog: failed to initialize schema: %w", err)
	}
	return &SQLite{db: db, now: time.Now}, nil
}

func (s *SQLite) Record(ctx context.Context, userID int64, code int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO logs_bot (user_id, code, created) VALUES (?, ?, ?)`,
		userID, code, s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("searchlog: failed to insert: %w", err)
	}
	return nil
}

func (s *SQLite) CountSuccess(ctx context.Context, userID int64, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM logs_bot WHERE user_id = ? AND code = ? AND created > ?`,
		userID, successCode, since.Unix(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("searchlog: failed to count: %w", err)
	}
	return count, nil
}

func (s *SQLite) Enabled() bool { return true }

func (s *SQLite) Close() error {
	return s.db.Close()
}
