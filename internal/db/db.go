package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory store, used by tests.
const MemoryPath = ":memory:"

// pragmas are applied to every new store before migrating. busy_timeout
// lets a CLI command wait for a running serve pass instead of failing.
var pragmas = []struct{ name, stmt string }{
	{"WAL mode", "PRAGMA journal_mode = WAL"},
	{"foreign keys", "PRAGMA foreign_keys = ON"},
	{"busy timeout", "PRAGMA busy_timeout = 5000"},
}

// OpenDB opens the portfolio store at path and brings its schema up to date.
// The in-memory store is pinned to one connection so every query sees the
// same database.
func OpenDB(path string) (*sql.DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	for _, p := range pragmas {
		if _, err := db.Exec(p.stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting %s: %w", p.name, err)
		}
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}
