package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/pilotage/internal/db"
	"github.com/alexanderramin/pilotage/internal/domain"
)

const milestoneColumns = `id, title, axis, status, planned_date, projected_date, slip_days, created_at, updated_at`

// SQLiteMilestoneRepo implements MilestoneRepo using a SQLite database.
type SQLiteMilestoneRepo struct {
	db db.DBTX
}

// NewSQLiteMilestoneRepo creates a new SQLiteMilestoneRepo.
func NewSQLiteMilestoneRepo(db db.DBTX) *SQLiteMilestoneRepo {
	return &SQLiteMilestoneRepo{db: db}
}

func (r *SQLiteMilestoneRepo) Create(ctx context.Context, m *domain.Milestone) error {
	status := m.Status
	if status == "" {
		status = domain.MilestoneUpcoming
	}
	projected := m.ProjectedDate
	if projected.IsZero() {
		projected = m.PlannedDate
	}
	query := `INSERT INTO milestones (id, title, axis, status, planned_date, projected_date,
		slip_days, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.Title,
		m.Axis,
		string(status),
		m.PlannedDate.UTC().Format(dateLayout),
		projected.UTC().Format(dateLayout),
		domain.ComputeSlipDays(m.PlannedDate, projected),
		m.CreatedAt.UTC().Format(time.RFC3339),
		m.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting milestone: %w", err)
	}

	for _, p := range m.Prerequisites {
		kind := p.Kind
		if kind == "" {
			kind = domain.LinkBlocking
		}
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO milestone_prerequisites (milestone_id, action_id, kind) VALUES (?, ?, ?)`,
			m.ID, p.ActionID, string(kind))
		if err != nil {
			return fmt.Errorf("inserting milestone prerequisite: %w", err)
		}
	}
	return nil
}

func (r *SQLiteMilestoneRepo) GetByID(ctx context.Context, id string) (*domain.Milestone, error) {
	query := `SELECT ` + milestoneColumns + ` FROM milestones WHERE id = ?`
	m, err := populateMilestone(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("milestone: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning milestone: %w", err)
	}
	if err := r.attachPrerequisites(ctx, []*domain.Milestone{m}); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *SQLiteMilestoneRepo) List(ctx context.Context, f MilestoneFilter) ([]*domain.Milestone, error) {
	query := `SELECT ` + milestoneColumns + ` FROM milestones`
	var args []any
	if f.Axis != "" {
		query += ` WHERE axis = ?`
		args = append(args, f.Axis)
	}
	query += ` ORDER BY planned_date, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing milestones: %w", err)
	}
	var milestones []*domain.Milestone
	for rows.Next() {
		m, err := populateMilestone(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning milestone: %w", err)
		}
		milestones = append(milestones, m)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("iterating milestones: %w", err)
	}

	if err := r.attachPrerequisites(ctx, milestones); err != nil {
		return nil, err
	}
	return milestones, nil
}

func (r *SQLiteMilestoneRepo) UpdateDerived(ctx context.Context, id string, patch MilestonePatch) error {
	set := ""
	var args []any
	if patch.Status != nil {
		set += "status = ?, "
		args = append(args, string(*patch.Status))
	}
	if patch.ProjectedDate != nil {
		set += "projected_date = ?, "
		args = append(args, patch.ProjectedDate.UTC().Format(dateLayout))
	}
	if patch.SlipDays != nil {
		set += "slip_days = ?, "
		args = append(args, *patch.SlipDays)
	}
	if set == "" {
		return nil
	}
	query := `UPDATE milestones SET ` + set + `updated_at = ? WHERE id = ?`
	args = append(args, nowUTC(), id)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating milestone: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("milestone %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteMilestoneRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM milestones WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting milestone: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("milestone %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteMilestoneRepo) attachPrerequisites(ctx context.Context, milestones []*domain.Milestone) error {
	if len(milestones) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Milestone, len(milestones))
	ids := make([]string, 0, len(milestones))
	for _, m := range milestones {
		byID[m.ID] = m
		ids = append(ids, m.ID)
	}

	query := `SELECT milestone_id, action_id, kind FROM milestone_prerequisites
		WHERE milestone_id IN (` + placeholders(len(ids)) + `)
		ORDER BY milestone_id, action_id`
	rows, err := r.db.QueryContext(ctx, query, stringsToArgs(ids)...)
	if err != nil {
		return fmt.Errorf("listing milestone prerequisites: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var milestoneID, actionID, kind string
		if err := rows.Scan(&milestoneID, &actionID, &kind); err != nil {
			return fmt.Errorf("scanning milestone prerequisite: %w", err)
		}
		if m, ok := byID[milestoneID]; ok {
			m.Prerequisites = append(m.Prerequisites, domain.Prerequisite{ActionID: actionID, Kind: domain.LinkKind(kind)})
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating milestone prerequisites: %w", err)
	}
	return nil
}

func populateMilestone(s rowScanner) (*domain.Milestone, error) {
	var m domain.Milestone
	var status, planned, projected, createdAt, updatedAt string
	err := s.Scan(&m.ID, &m.Title, &m.Axis, &status, &planned, &projected, &m.SlipDays, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	m.Status = domain.MilestoneStatus(status)
	m.PlannedDate = parseTime(planned, dateLayout)
	m.ProjectedDate = parseTime(projected, dateLayout)
	m.CreatedAt = parseTime(createdAt, time.RFC3339)
	m.UpdatedAt = parseTime(updatedAt, time.RFC3339)
	return &m, nil
}
