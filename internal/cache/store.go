package cache

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/finlens/leienrich/internal/domain"
)

// Store is the durable LEI cache: a SQLite file holding one row per
// resolved LEI, mirrored in memory for lookups. The in-memory map is the
// working copy; Persist writes it back in one transaction.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	entries map[string]domain.Entity
	dirty   bool
}

// Open opens (or creates) the cache database at the given path and loads
// all entries into memory. Pass ":memory:" for an ephemeral cache. A
// missing file is an empty cache. A corrupt file is moved aside to
// <path>.corrupt and replaced with an empty cache; only a failure to
// create a fresh database is fatal.
func Open(path string) (*Store, error) {
	db, err := initDB(path)
	if err != nil {
		if path == ":memory:" {
			return nil, err
		}
		log.Printf("[cache] WARNING: cache at %s is unusable (%v), starting from empty", path, err)
		if renameErr := os.Rename(path, path+".corrupt"); renameErr != nil {
			return nil, fmt.Errorf("move corrupt cache aside: %w", renameErr)
		}
		db, err = initDB(path)
		if err != nil {
			return nil, fmt.Errorf("recreate cache: %w", err)
		}
	}

	s := &Store{db: db, entries: make(map[string]domain.Entity)}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func initDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec(
		`CREATE TABLE IF NOT EXISTS lei_entities (
			lei TEXT PRIMARY KEY,
			legal_name TEXT NOT NULL,
			bic TEXT NOT NULL,
			country TEXT NOT NULL
		)`,
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

// load reads every persisted entry into the in-memory map. Rows that fail
// to scan are logged and skipped, never fatal.
func (s *Store) load() error {
	rows, err := s.db.Query("SELECT lei, legal_name, bic, country FROM lei_entities")
	if err != nil {
		return fmt.Errorf("load cache: %w", err)
	}
	defer rows.Close()

	skipped := 0
	for rows.Next() {
		var lei string
		var e domain.Entity
		if err := rows.Scan(&lei, &e.LegalName, &e.BIC, &e.Country); err != nil {
			log.Printf("[cache] skipping malformed cache row: %v", err)
			skipped++
			continue
		}
		s.entries[lei] = e
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("scan cache: %w", err)
	}
	if skipped > 0 {
		log.Printf("[cache] loaded %d entries, skipped %d malformed rows", len(s.entries), skipped)
	}
	return nil
}

// Get returns the cached entity for an LEI, if any.
func (s *Store) Get(lei string) (domain.Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[lei]
	return e, ok
}

// Put stores an entity in the in-memory map. The change reaches disk on
// the next Persist.
func (s *Store) Put(lei string, e domain.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[lei] = e
	s.dirty = true
}

// Persist rewrites the full mapping to disk in a single transaction, so a
// crash mid-write cannot corrupt previously committed entries. It is a
// no-op when nothing changed since the last persist.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM lei_entities"); err != nil {
		return fmt.Errorf("clear cache table: %w", err)
	}

	stmt, err := tx.Prepare(
		"INSERT INTO lei_entities (lei, legal_name, bic, country) VALUES (?,?,?,?)",
	)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for lei, e := range s.entries {
		if _, err := stmt.Exec(lei, e.LegalName, e.BIC, e.Country); err != nil {
			return fmt.Errorf("insert %s: %w", lei, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.dirty = false
	return nil
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// All returns a copy of the full mapping.
func (s *Store) All() map[string]domain.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.Entity, len(s.entries))
	for lei, e := range s.entries {
		out[lei] = e
	}
	return out
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
