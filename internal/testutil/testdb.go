package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/alexanderramin/pilotage/internal/db"
)

// Today is the fixed reference day used across engine and service tests.
var Today = time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)

// Day returns Today shifted by n days.
func Day(n int) time.Time {
	return Today.AddDate(0, 0, n)
}

// DayPtr returns a pointer to Today shifted by n days.
func DayPtr(n int) *time.Time {
	d := Day(n)
	return &d
}

// NewTestDB opens a migrated in-memory store closed at test cleanup.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
