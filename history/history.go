// Package history persists the most recent analysis verdicts in a small
// SQLite key-value store.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "modernc.org/sqlite"

	"nutrinode/analysis"
)

// MaxEntries caps the stored history, newest first.
const MaxEntries = 5

const storeKey = "nutrinode_history"

// Entry is one remembered verdict.
type Entry struct {
	ID      int64            `json:"id"`
	Source  string           `json:"source"`
	Profile analysis.Profile `json:"profile"`
	Result  analysis.Result  `json:"result"`
}

// NewEntry stamps a verdict with the current wall clock as its identity.
func NewEntry(source string, profile analysis.Profile, r analysis.Result) Entry {
	return Entry{
		ID:      time.Now().UnixMilli(),
		Source:  source,
		Profile: profile,
		Result:  r,
	}
}

// Store holds history in a single-row SQLite key-value table.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the per-OS database location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "NutriNode", "nutrinode.sqlite")
	}
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "nutrinode", "nutrinode.sqlite")
}

// Open opens or creates the store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value BLOB)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the stored entries, newest first. A missing or unreadable
// value yields an empty history rather than an error.
func (s *Store) Load() ([]Entry, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, storeKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(value, &entries); err != nil {
		// Corrupt stored value. Start over instead of wedging startup.
		return nil, nil
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return entries, nil
}

// Append prepends e and persists the truncated list, returning it.
func (s *Store) Append(e Entry) ([]Entry, error) {
	entries, err := s.Load()
	if err != nil {
		return nil, err
	}

	entries = append([]Entry{e}, entries...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	value, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	_, err = s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		storeKey, value,
	)
	if err != nil {
		return nil, fmt.Errorf("save history: %w", err)
	}
	return entries, nil
}

// Clear removes all stored entries.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, storeKey)
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
