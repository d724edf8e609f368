package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	defaultPath = "data/arb.db"
)

// Store wraps a SQLite DB connection.
type Store struct {
	path string
	db   *sql.DB
}

// Open creates (if needed) and opens the SQLite database.
func Open(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := ensureWAL(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return &Store{path: path, db: db}, nil
}

func ensureWAL(db *sql.DB) error {
	const (
		maxAttempts = 5
		delay       = 200 * time.Millisecond
	)
	for i := 0; i < maxAttempts; i++ {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			if strings.Contains(err.Error(), "database is locked") {
				time.Sleep(delay)
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("database is locked after retries")
}

// Path returns the path backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the DB.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var tables = []string{"book_hedges", "lines", "arb_results", "runs"}

// CreateTables ensures every table exists.
func (s *Store) CreateTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaSQL)
	return err
}

// DropTables removes every table.
func (s *Store) DropTables(ctx context.Context) error {
	for _, t := range tables {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s;`, t)); err != nil {
			return fmt.Errorf("drop %s: %w", t, err)
		}
	}
	return nil
}

// ClearTables deletes all rows, children first.
func (s *Store) ClearTables(ctx context.Context) error {
	for _, t := range tables {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s;`, t)); err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}
	return nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	sport TEXT NOT NULL,
	league TEXT,
	captured_at TEXT,
	started_at TEXT,
	finished_at TEXT,
	result_count INTEGER,
	opportunity_count INTEGER,
	unmatched_json TEXT,
	ambiguous_json TEXT,
	skipped_json TEXT
);
CREATE TABLE IF NOT EXISTS arb_results (
	run_id TEXT NOT NULL,
	result_rank INTEGER NOT NULL,
	pair_id TEXT NOT NULL,
	book_event_id TEXT,
	market_event_id TEXT,
	side_a TEXT,
	side_b TEXT,
	scheduled_at TEXT,
	swapped INTEGER,
	has_opportunity INTEGER,
	combined_cost REAL,
	profit_percent REAL,
	direction TEXT,
	leg_a_source TEXT,
	leg_a_provider TEXT,
	leg_a_probability REAL,
	leg_b_source TEXT,
	leg_b_provider TEXT,
	leg_b_probability REAL,
	budget_usd REAL,
	guaranteed_return_usd REAL,
	profit_usd REAL,
	raw_json TEXT,
	PRIMARY KEY (run_id, pair_id)
);
CREATE INDEX IF NOT EXISTS arb_results_pair_idx ON arb_results(pair_id);
CREATE TABLE IF NOT EXISTS lines (
	run_id TEXT NOT NULL,
	source TEXT NOT NULL,
	provider TEXT NOT NULL,
	event_id TEXT NOT NULL,
	side_a TEXT,
	side_b TEXT,
	side_a_price REAL,
	side_b_price REAL,
	side_a_implied REAL,
	side_b_implied REAL,
	side_a_true REAL,
	side_b_true REAL,
	margin REAL,
	line_hash TEXT
);
CREATE INDEX IF NOT EXISTS lines_event_idx ON lines(run_id, source, event_id);
CREATE TABLE IF NOT EXISTS book_hedges (
	run_id TEXT NOT NULL,
	event_id TEXT NOT NULL,
	leg_1_provider TEXT,
	leg_1_side TEXT,
	leg_1_american INTEGER,
	leg_1_stake_usd REAL,
	leg_2_provider TEXT,
	leg_2_side TEXT,
	leg_2_american INTEGER,
	leg_2_stake_usd REAL,
	total_implied REAL,
	profit_usd REAL,
	profit_percent REAL
);
`

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
