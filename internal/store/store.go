package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"cons/internal/logging"
)

// LocalStore is the single-connection SQLite store backing the note
// graph (notes, tags, note_tags, tag_aliases, edges) and its FTS5
// index. A single *sql.DB with SetMaxOpenConns(1) plus an RWMutex
// serializes access, the usual pattern for an embedded SQLite
// database running under WAL.
type LocalStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewLocalStore opens (creating if absent) the SQLite database at path
// and ensures the current schema and migrations are applied.
func NewLocalStore(path string) (*LocalStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewLocalStore")
	defer timer.Stop()

	log := logging.Get(logging.CategoryStore)
	log.Info("opening store at %s", path)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			log.Warn("pragma failed (%s): %v", pragma, err)
		}
	}

	s := &LocalStore{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("store ready at %s", path)
	return s, nil
}

// initialize creates the schema and applies pending migrations. Safe
// to call repeatedly; every statement is additive/idempotent.
func (s *LocalStore) initialize() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if err := RunMigrations(s.db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if _, err := s.db.Exec(fts5Triggers); err != nil {
		return fmt.Errorf("apply fts triggers: %w", err)
	}
	return nil
}

// DB returns the underlying *sql.DB for callers that need to begin
// their own transaction (the NoteService façade).
func (s *LocalStore) DB() *sql.DB {
	return s.db
}

// Lock/Unlock/RLock/RUnlock expose the store's serialization mutex so
// callers that must coordinate a multi-statement transaction with
// concurrent readers can do so without reaching into an unexported
// field.
func (s *LocalStore) Lock()    { s.mu.Lock() }
func (s *LocalStore) Unlock()  { s.mu.Unlock() }
func (s *LocalStore) RLock()   { s.mu.RLock() }
func (s *LocalStore) RUnlock() { s.mu.RUnlock() }

// Close closes the underlying database connection.
func (s *LocalStore) Close() error {
	logging.Get(logging.CategoryStore).Info("closing store at %s", s.dbPath)
	return s.db.Close()
}

// Stats returns row counts for the core tables.
func (s *LocalStore) Stats() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]int64)
	for _, table := range []string{"notes", "tags", "note_tags", "tag_aliases", "edges"} {
		var count int64
		if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		stats[table] = count
	}
	return stats, nil
}
