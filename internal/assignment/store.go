package assignment

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultDBFile is the database file created next to the booklets
const DefaultDBFile = "assignments.db"

// Count is the number of assignments of one booklet
type Count struct {
	BookletID int `json:"bid"`
	Count     int `json:"cnt"`
}

// Store keeps assignment counters in SQLite
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the store at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS booklet_stats (
			bid INTEGER PRIMARY KEY,
			cnt INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS assignments (
			id TEXT PRIMARY KEY,
			bid INTEGER NOT NULL,
			assigned_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_bid ON assignments(bid)`,
		`CREATE TABLE IF NOT EXISTS responses (
			user_id TEXT NOT NULL,
			qid TEXT NOT NULL,
			booklet_id INTEGER NOT NULL,
			answer TEXT NOT NULL,
			ts INTEGER NOT NULL,
			PRIMARY KEY (user_id, qid)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_booklet ON responses(booklet_id)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// Record increments the counter of booklet bid and logs the assignment
func (s *Store) Record(ctx context.Context, id string, bid int, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO booklet_stats (bid, cnt) VALUES (?, 1)
		 ON CONFLICT(bid) DO UPDATE SET cnt = cnt + 1`, bid); err != nil {
		return fmt.Errorf("failed to update counter: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO assignments (id, bid, assigned_at) VALUES (?, ?, ?)`,
		id, bid, at.UTC()); err != nil {
		return fmt.Errorf("failed to record assignment: %w", err)
	}

	return tx.Commit()
}

// Counts returns the counters ordered by booklet id
func (s *Store) Counts(ctx context.Context) ([]Count, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bid, cnt FROM booklet_stats ORDER BY bid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query counters: %w", err)
	}
	defer rows.Close()

	var counts []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.BookletID, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
