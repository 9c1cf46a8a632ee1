package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/pilotage/internal/db"
	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/google/uuid"
)

// SQLiteAuditRepo implements AuditRepo using a SQLite database.
// The log is append-only.
type SQLiteAuditRepo struct {
	db db.DBTX
}

// NewSQLiteAuditRepo creates a new SQLiteAuditRepo.
func NewSQLiteAuditRepo(db db.DBTX) *SQLiteAuditRepo {
	return &SQLiteAuditRepo{db: db}
}

func (r *SQLiteAuditRepo) Append(ctx context.Context, e *domain.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.Actor == "" {
		e.Actor = domain.SystemActor
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO audit_log
		(id, ts, entity_type, entity_id, field, old_value, new_value, actor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp.UTC().Format(timestampLayout), string(e.EntityType), e.EntityID,
		e.Field, e.OldValue, e.NewValue, e.Actor)
	if err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}
	return nil
}

func (r *SQLiteAuditRepo) ListByEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]*domain.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, ts, entity_type, entity_id, field, old_value, new_value, actor
		FROM audit_log WHERE entity_type = ? AND entity_id = ? ORDER BY ts, id`,
		string(entityType), entityID)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var ts, et string
		if err := rows.Scan(&e.ID, &ts, &et, &e.EntityID, &e.Field, &e.OldValue, &e.NewValue, &e.Actor); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		e.Timestamp = parseTime(ts, timestampLayout)
		e.EntityType = domain.EntityType(et)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}
	return entries, nil
}

func (r *SQLiteAuditRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting audit entries: %w", err)
	}
	return n, nil
}
