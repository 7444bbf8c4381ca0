package stats

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteHistory persists stats snapshots to a SQLite database, one row per
// sample, standing in for an external time-series sink: the hot path never
// touches it directly, only Reporter.sample does, on its own ticker, well
// off the per-connection codec/exec path.
type SQLiteHistory struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteHistory opens (creating if necessary) a SQLite database at path
// and ensures the history table exists.
func NewSQLiteHistory(path string) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("stats: open sqlite history: %w", err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS stats_history (
		sampled_at       INTEGER NOT NULL,
		bytes_read       INTEGER NOT NULL,
		pixels_set       INTEGER NOT NULL,
		clients_total    INTEGER NOT NULL,
		clients_current  INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("stats: create sqlite history table: %w", err)
	}
	return &SQLiteHistory{db: db}, nil
}

// Record inserts one history row. An insert error is discarded; nothing is
// logged or returned.
func (h *SQLiteHistory) Record(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, _ = h.db.Exec(
		`INSERT INTO stats_history (sampled_at, bytes_read, pixels_set, clients_total, clients_current) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Unix(), snap.BytesRead, snap.PixelsSet, snap.ClientsTotal, snap.ClientsCurrent,
	)
}

// Close releases the underlying database handle.
func (h *SQLiteHistory) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.db.Close()
}
