package store

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	_ "github.com/ncruces/go-sqlite3/driver"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/rerr"
)

// Store is the SQLite-backed knowledge store. Thread-safe for concurrent
// callers; every exported method acquires mu briefly and releases it
// before returning — no method calls another exported method while still
// holding the lock, so there is no re-entrant acquisition anywhere in this
// package.
type Store struct {
	mu      sync.RWMutex
	db      *sql.DB
	hasVec  bool
}

// Open opens (creating if absent) the knowledge database file under
// dataDir, applies WAL/foreign-key/synchronous pragmas, and runs any
// outstanding migrations. Migration failure is fatal and blocks open.
func Open(dataDir string) (*Store, error) {
	path := filepath.Join(dataDir, "rag.db")
	return OpenDSN(path)
}

// OpenDSN opens a store at an explicit DSN (a file path, or ":memory:" for
// tests). Pragmas and migrations are applied identically to Open.
func OpenDSN(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, rerr.Wrap(rerr.Storage, "store.Open", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, rerr.Wrap(rerr.Storage, "store.Open: pragma", err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schemaVersionTable); err != nil {
		return rerr.Wrap(rerr.Storage, "store.migrate: schema version table", err)
	}

	var current int
	row := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM _schema_version`)
	if err := row.Scan(&current); err != nil {
		return rerr.Wrap(rerr.Storage, "store.migrate: read version", err)
	}

	if current < 1 {
		if _, err := s.db.Exec(migrateV1); err != nil {
			return rerr.Wrap(rerr.Storage, "store.migrate: v1", err)
		}
		if err := s.recordVersion(1); err != nil {
			return err
		}
		current = 1
	}

	if current < 2 {
		if err := s.migrateV2(); err != nil {
			return err
		}
		if err := s.recordVersion(2); err != nil {
			return err
		}
	} else {
		// v2 was applied by an earlier open: the vec0 table is usable only if
		// it exists and can be queried with the extension registered now.
		var n int
		s.hasVec = s.db.QueryRow(`SELECT COUNT(*) FROM vec_knowledge`).Scan(&n) == nil
	}

	return nil
}

// migrateV2 creates the vec0 virtual table and backfills it. A missing
// vector extension downgrades retrieval to the legacy scan path but does
// not block open — it is logged, not propagated.
func (s *Store) migrateV2() error {
	if _, err := s.db.Exec(migrateV2Vec); err != nil {
		fmt.Printf("[rebe] vector index unavailable, falling back to legacy scan: %v\n", err)
		s.hasVec = false
		return nil
	}
	if _, err := s.db.Exec(migrateV2Backfill); err != nil {
		fmt.Printf("[rebe] vector index backfill failed: %v\n", err)
		s.hasVec = false
		return nil
	}
	s.hasVec = true
	return nil
}

func (s *Store) recordVersion(version int) error {
	_, err := s.db.Exec(`INSERT INTO _schema_version(version, applied_at) VALUES (?, ?)`,
		version, nowISO())
	if err != nil {
		return rerr.Wrap(rerr.Storage, "store.migrate: record version", err)
	}
	return nil
}

// HasVectorIndex reports whether the vec0 virtual table is available for
// this store. The retrieval engine uses this to decide whether to attempt
// the KNN path at all.
func (s *Store) HasVectorIndex() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasVec
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// nowISO returns the current time as an RFC-3339 UTC string, the format
// every stored timestamp uses so that lexicographic and chronological
// ordering coincide.
func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
