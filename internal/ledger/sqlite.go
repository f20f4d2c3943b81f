package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS processed (
    id          TEXT PRIMARY KEY,
    recorded_at TEXT NOT NULL
)`

// SQLiteLedger stores the processed set in a single-table SQLite database.
// INSERT OR IGNORE gives the same append-only, no-duplicates contract as the
// file backend without an in-memory cache.
type SQLiteLedger struct {
	db   *sql.DB
	path string
}

// OpenSQLite initializes or connects to the ledger database at path.
func OpenSQLite(path string) (*SQLiteLedger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create ledger directory: %v", ErrRead, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite db: %v", ErrRead, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: apply pragma %q: %v", ErrRead, pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: apply schema: %v", ErrRead, err)
	}

	return &SQLiteLedger{db: db, path: path}, nil
}

// Contains queries the set directly; no cache layer exists for this backend.
func (l *SQLiteLedger) Contains(ctx context.Context, id string) (bool, error) {
	var one int
	err := l.db.QueryRowContext(ctx, `SELECT 1 FROM processed WHERE id = ?`, id).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, fmt.Errorf("%w: query %s: %v", ErrRead, l.path, err)
	}
	return true, nil
}

// Record inserts id, ignoring duplicates.
func (l *SQLiteLedger) Record(ctx context.Context, id string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO processed (id, recorded_at) VALUES (?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("%w: insert %s: %v", ErrWrite, l.path, err)
	}
	return nil
}

// All returns the recorded identifiers in lexicographic order.
func (l *SQLiteLedger) All(ctx context.Context) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT id FROM processed ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", ErrRead, l.path, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", ErrRead, l.path, err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate %s: %v", ErrRead, l.path, err)
	}
	return out, nil
}

// Close closes the underlying database connection.
func (l *SQLiteLedger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}
