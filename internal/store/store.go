package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// Store is a SQLite workspace holding one scored batch.
type Store struct {
	db *sql.DB
}

func New(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	query := `
CREATE TABLE IF NOT EXISTS ScoredTrack (
  seq INTEGER PRIMARY KEY,
  title TEXT NOT NULL,
  popularity INTEGER NOT NULL,
  duration_min REAL NOT NULL,
  trend_category TEXT NOT NULL,
  video_count INTEGER NOT NULL,
  view_estimate_millions REAL NOT NULL,
  weeks_trending INTEGER NOT NULL,
  celebrity_boost TEXT NOT NULL,
  virality_score REAL NOT NULL
);
`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}
