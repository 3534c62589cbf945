package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"editcmd/internal/command"
	"editcmd/internal/logging"

	_ "modernc.org/sqlite"
)

// HistoryStore persists executed commands to SQLite. It implements
// command.Sink so a History can forward every recorded entry to it.
//
// Storage location: history.database_path (default cache/history.db)
type HistoryStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

var _ command.Sink = (*HistoryStore)(nil)

// NewHistoryStore opens or creates the database at path. ":memory:" opens
// a private in-memory database.
func NewHistoryStore(path string) (*HistoryStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps an in-memory database alive and serializes writers
	db.SetMaxOpenConns(1)

	s := &HistoryStore{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.StoreDebug("history store opened at %s", path)
	return s, nil
}

func (s *HistoryStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS command_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entry_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		scope TEXT,
		executed_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_name ON command_history(name);
	CREATE INDEX IF NOT EXISTS idx_history_executed ON command_history(executed_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// Path returns the database path.
func (s *HistoryStore) Path() string { return s.dbPath }

// Append stores e. Appending an entry id twice keeps the first.
func (s *HistoryStore) Append(ctx context.Context, e command.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO command_history (entry_id, name, scope, executed_at)
		VALUES (?, ?, ?, ?)`,
		e.ID, e.Name, e.Scope, e.At.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to store history entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A limit of zero or
// less returns every entry.
func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]command.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_id, name, COALESCE(scope, ''), executed_at
		FROM command_history
		ORDER BY executed_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []command.Entry
	for rows.Next() {
		var e command.Entry
		var at int64
		if err := rows.Scan(&e.ID, &e.Name, &e.Scope, &at); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.At = time.Unix(0, at)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of stored entries.
func (s *HistoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM command_history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

// Prune keeps the newest keep entries and deletes the rest. It returns the
// number of rows removed.
func (s *HistoryStore) Prune(ctx context.Context, keep int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM command_history WHERE id NOT IN (
			SELECT id FROM command_history ORDER BY executed_at DESC, id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		logging.StoreDebug("pruned %d history entries (keep=%d)", n, keep)
	}
	return n, nil
}

// Clear deletes every stored entry.
func (s *HistoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM command_history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
