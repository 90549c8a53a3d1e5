// Package deckdb opens the editor's local SQLite database with the pragmas
// the persistence layer depends on (WAL journaling, enforced foreign keys,
// a generous busy timeout). Both the chunked document store and the
// resource store live in the same file.
//
// Usage:
//
//	import _ "modernc.org/sqlite"
//	db, err := deckdb.Open("deck.db")
//
// In tests:
//
//	db := deckdb.OpenMemory(t)
package deckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Open opens (creating if needed) the database at path and applies the
// module pragmas. Parent directories are created automatically. The caller
// must blank-import modernc.org/sqlite.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("deckdb: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("deckdb: open: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("deckdb: %s: %w", p, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("deckdb: ping: %w", err)
	}
	return db, nil
}

// OpenMemory opens an in-memory database for testing, capped to a single
// connection so every query hits the same database, and closed on cleanup.
func OpenMemory(t testing.TB) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("deckdb.OpenMemory: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}
