package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/pilotage/internal/db"
	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/google/uuid"
)

// SQLiteAlertRepo implements AlertRepo using a SQLite database.
type SQLiteAlertRepo struct {
	db db.DBTX
}

// NewSQLiteAlertRepo creates a new SQLiteAlertRepo.
func NewSQLiteAlertRepo(db db.DBTX) *SQLiteAlertRepo {
	return &SQLiteAlertRepo{db: db}
}

// Upsert relies on the partial unique index over unresolved alerts, so a
// duplicate open alert is silently skipped.
func (r *SQLiteAlertRepo) Upsert(ctx context.Context, a *domain.Alert) (bool, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.Severity == "" {
		a.Severity = domain.SeverityWarning
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO alerts
		(id, entity_type, entity_id, condition, severity, message, resolved, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(entity_type, entity_id, condition) WHERE resolved = 0 DO NOTHING`,
		a.ID, string(a.EntityType), a.EntityID, string(a.Condition), string(a.Severity), a.Message,
		a.CreatedAt.UTC().Format(timestampLayout), now.Format(timestampLayout))
	if err != nil {
		return false, fmt.Errorf("upserting alert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("upserting alert: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteAlertRepo) ListUnresolved(ctx context.Context) ([]*domain.Alert, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, entity_type, entity_id, condition, severity, message,
		resolved, created_at, updated_at, resolved_at
		FROM alerts WHERE resolved = 0 ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*domain.Alert
	for rows.Next() {
		var a domain.Alert
		var et, cond, sev, createdAt, updatedAt string
		var resolved int
		var resolvedAt sql.NullString
		if err := rows.Scan(&a.ID, &et, &a.EntityID, &cond, &sev, &a.Message,
			&resolved, &createdAt, &updatedAt, &resolvedAt); err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}
		a.EntityType = domain.EntityType(et)
		a.Condition = domain.AlertCondition(cond)
		a.Severity = domain.AlertSeverity(sev)
		a.Resolved = intToBool(resolved)
		a.CreatedAt = parseTime(createdAt, timestampLayout)
		a.UpdatedAt = parseTime(updatedAt, timestampLayout)
		a.ResolvedAt = parseNullableTime(resolvedAt, timestampLayout)
		alerts = append(alerts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating alerts: %w", err)
	}
	return alerts, nil
}

func (r *SQLiteAlertRepo) Resolve(ctx context.Context, id string, at time.Time) error {
	ts := at.UTC().Format(timestampLayout)
	res, err := r.db.ExecContext(ctx, `UPDATE alerts SET resolved = ?, resolved_at = ?, updated_at = ?
		WHERE id = ? AND resolved = 0`, boolToInt(true), ts, ts, id)
	if err != nil {
		return fmt.Errorf("resolving alert: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("alert %s: %w", id, ErrNotFound)
	}
	return nil
}
