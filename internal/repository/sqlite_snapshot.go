package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/pilotage/internal/db"
	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/google/uuid"
)

// SQLiteSnapshotRepo implements SnapshotRepo using a SQLite database.
type SQLiteSnapshotRepo struct {
	db db.DBTX
}

// NewSQLiteSnapshotRepo creates a new SQLiteSnapshotRepo.
func NewSQLiteSnapshotRepo(db db.DBTX) *SQLiteSnapshotRepo {
	return &SQLiteSnapshotRepo{db: db}
}

func (r *SQLiteSnapshotRepo) Record(ctx context.Context, s *domain.SyncSnapshot) (bool, error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO sync_snapshots
		(id, day, taken_at, technical_pct, mobilization_pct, gap)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(day) DO NOTHING`,
		s.ID, s.TakenAt.UTC().Format(dateLayout), s.TakenAt.UTC().Format(time.RFC3339),
		s.TechnicalPct, s.MobilizationPct, s.Gap)
	if err != nil {
		return false, fmt.Errorf("recording sync snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("recording sync snapshot: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteSnapshotRepo) LatestOnOrBefore(ctx context.Context, t time.Time) (*domain.SyncSnapshot, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, taken_at, technical_pct, mobilization_pct, gap
		FROM sync_snapshots WHERE taken_at <= ? ORDER BY taken_at DESC LIMIT 1`,
		t.UTC().Format(time.RFC3339))
	s, err := populateSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sync snapshot: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning sync snapshot: %w", err)
	}
	return s, nil
}

func (r *SQLiteSnapshotRepo) List(ctx context.Context) ([]*domain.SyncSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, taken_at, technical_pct, mobilization_pct, gap
		FROM sync_snapshots ORDER BY taken_at`)
	if err != nil {
		return nil, fmt.Errorf("listing sync snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*domain.SyncSnapshot
	for rows.Next() {
		s, err := populateSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sync snapshot: %w", err)
		}
		snaps = append(snaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sync snapshots: %w", err)
	}
	return snaps, nil
}

func populateSnapshot(s rowScanner) (*domain.SyncSnapshot, error) {
	var snap domain.SyncSnapshot
	var takenAt string
	if err := s.Scan(&snap.ID, &takenAt, &snap.TechnicalPct, &snap.MobilizationPct, &snap.Gap); err != nil {
		return nil, err
	}
	snap.TakenAt = parseTime(takenAt, time.RFC3339)
	return &snap, nil
}
