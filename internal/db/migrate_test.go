package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"milestones", "actions", "action_prerequisites", "milestone_prerequisites",
		"sync_links", "sync_link_targets", "risks", "risk_action_links",
		"budget_lines", "audit_log", "alerts", "sync_snapshots",
	}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_actions_axis",
		"idx_actions_scope",
		"idx_actions_milestone",
		"idx_sync_links_source",
		"idx_audit_entity",
		"idx_alerts_open_key",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk, "foreign keys should be enabled")
}

func TestMigrate_ProgressCheckConstraint(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO actions (id, title, progress, created_at, updated_at)
		VALUES ('a1', 'x', 120, '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.Error(t, err, "progress above 100 must be rejected")
}

func TestMigrate_OpenAlertKeyIsUnique(t *testing.T) {
	db := openTestDB(t)

	insert := `INSERT INTO alerts (id, entity_type, entity_id, condition, resolved, created_at, updated_at)
		VALUES (?, 'action', 'a1', 'action_late', ?, '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`
	_, err := db.Exec(insert, "al1", 0)
	require.NoError(t, err)
	_, err = db.Exec(insert, "al2", 0)
	require.Error(t, err, "a second unresolved alert for the same key must be rejected")

	// resolved alerts do not collide with the open one
	_, err = db.Exec(insert, "al3", 1)
	require.NoError(t, err)
}

func TestOpenDB_AppliesPragmas(t *testing.T) {
	db := openTestDB(t)

	var fk, busy int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	require.NoError(t, db.QueryRow(`PRAGMA busy_timeout`).Scan(&busy))
	assert.Equal(t, 1, fk)
	assert.Equal(t, 5000, busy)
}
