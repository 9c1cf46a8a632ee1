package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS milestones (
		id             TEXT PRIMARY KEY,
		title          TEXT NOT NULL,
		axis           TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL DEFAULT 'a_venir'
		               CHECK(status IN ('a_venir','en_approche','en_danger','atteint','depasse','annule')),
		planned_date   TEXT NOT NULL,
		projected_date TEXT NOT NULL,
		slip_days      INTEGER NOT NULL DEFAULT 0 CHECK(slip_days >= 0),
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS actions (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL,
		axis          TEXT NOT NULL DEFAULT '',
		owner_id      TEXT NOT NULL DEFAULT '',
		milestone_id  TEXT REFERENCES milestones(id) ON DELETE SET NULL,
		status        TEXT NOT NULL DEFAULT 'to_schedule'
		              CHECK(status IN ('to_schedule','planned','to_do','in_progress','waiting',
		                               'blocked','in_validation','done','cancelled','postponed')),
		progress      INTEGER NOT NULL DEFAULT 0 CHECK(progress BETWEEN 0 AND 100),
		planned_start TEXT,
		planned_end   TEXT,
		actual_end    TEXT,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	// building_code arrived after the first release; re-running is tolerated.
	`ALTER TABLE actions ADD COLUMN building_code TEXT NOT NULL DEFAULT ''`,

	`CREATE INDEX IF NOT EXISTS idx_actions_axis ON actions(axis)`,
	`CREATE INDEX IF NOT EXISTS idx_actions_scope ON actions(axis, building_code)`,
	`CREATE INDEX IF NOT EXISTS idx_actions_milestone ON actions(milestone_id)`,

	`CREATE TABLE IF NOT EXISTS action_prerequisites (
		action_id       TEXT NOT NULL REFERENCES actions(id) ON DELETE CASCADE,
		prerequisite_id TEXT NOT NULL REFERENCES actions(id) ON DELETE CASCADE,
		kind            TEXT NOT NULL DEFAULT 'blocking'
		                CHECK(kind IN ('blocking','informative')),
		PRIMARY KEY (action_id, prerequisite_id),
		CHECK(action_id != prerequisite_id)
	)`,

	`CREATE TABLE IF NOT EXISTS milestone_prerequisites (
		milestone_id TEXT NOT NULL REFERENCES milestones(id) ON DELETE CASCADE,
		action_id    TEXT NOT NULL REFERENCES actions(id) ON DELETE CASCADE,
		kind         TEXT NOT NULL DEFAULT 'blocking'
		             CHECK(kind IN ('blocking','informative')),
		PRIMARY KEY (milestone_id, action_id)
	)`,

	`CREATE TABLE IF NOT EXISTS sync_links (
		id               TEXT PRIMARY KEY,
		source_action_id TEXT NOT NULL REFERENCES actions(id) ON DELETE CASCADE,
		lag_days         INTEGER NOT NULL DEFAULT 0,
		kind             TEXT NOT NULL DEFAULT 'finish_to_start'
		                 CHECK(kind IN ('finish_to_start','start_to_start','mirror'))
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sync_links_source ON sync_links(source_action_id)`,

	// Targets are not foreign keys: bulk imports may leave a link pointing at
	// an action that no longer exists, and previews must report it.
	`CREATE TABLE IF NOT EXISTS sync_link_targets (
		link_id   TEXT NOT NULL REFERENCES sync_links(id) ON DELETE CASCADE,
		action_id TEXT NOT NULL,
		position  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (link_id, action_id)
	)`,

	`CREATE TABLE IF NOT EXISTS risks (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL,
		probability   INTEGER NOT NULL CHECK(probability BETWEEN 1 AND 5),
		impact        INTEGER NOT NULL CHECK(impact BETWEEN 1 AND 5),
		score         INTEGER NOT NULL DEFAULT 1 CHECK(score BETWEEN 1 AND 25),
		status        TEXT NOT NULL DEFAULT 'open' CHECK(status IN ('open','closed')),
		axis          TEXT NOT NULL DEFAULT '',
		building_code TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS risk_action_links (
		risk_id   TEXT NOT NULL REFERENCES risks(id) ON DELETE CASCADE,
		action_id TEXT NOT NULL REFERENCES actions(id) ON DELETE CASCADE,
		source    TEXT NOT NULL DEFAULT 'auto' CHECK(source IN ('auto','manual')),
		PRIMARY KEY (risk_id, action_id)
	)`,

	`CREATE TABLE IF NOT EXISTS budget_lines (
		id               TEXT PRIMARY KEY,
		category         TEXT NOT NULL DEFAULT '',
		axis             TEXT NOT NULL DEFAULT '',
		label            TEXT NOT NULL DEFAULT '',
		planned_amount   REAL NOT NULL DEFAULT 0,
		committed_amount REAL NOT NULL DEFAULT 0,
		actual_amount    REAL NOT NULL DEFAULT 0,
		created_at       TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS audit_log (
		id          TEXT PRIMARY KEY,
		ts          TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id   TEXT NOT NULL,
		field       TEXT NOT NULL,
		old_value   TEXT NOT NULL DEFAULT '',
		new_value   TEXT NOT NULL DEFAULT '',
		actor       TEXT NOT NULL DEFAULT 'system'
	)`,

	`CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_log(entity_type, entity_id)`,

	`CREATE TABLE IF NOT EXISTS alerts (
		id          TEXT PRIMARY KEY,
		entity_type TEXT NOT NULL,
		entity_id   TEXT NOT NULL,
		condition   TEXT NOT NULL,
		severity    TEXT NOT NULL DEFAULT 'warning'
		            CHECK(severity IN ('info','warning','critical')),
		message     TEXT NOT NULL DEFAULT '',
		resolved    INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		resolved_at TEXT
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_alerts_open_key
		ON alerts(entity_type, entity_id, condition) WHERE resolved = 0`,

	`CREATE TABLE IF NOT EXISTS sync_snapshots (
		id               TEXT PRIMARY KEY,
		day              TEXT NOT NULL UNIQUE,
		taken_at         TEXT NOT NULL,
		technical_pct    REAL NOT NULL,
		mobilization_pct REAL NOT NULL,
		gap              REAL NOT NULL
	)`,
}
