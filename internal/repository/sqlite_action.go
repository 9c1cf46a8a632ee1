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

// actionColumns is the canonical SELECT column list for actions.
const actionColumns = `id, title, axis, building_code, owner_id, milestone_id,
		status, progress, planned_start, planned_end, actual_end, created_at, updated_at`

// SQLiteActionRepo implements ActionRepo using a SQLite database.
type SQLiteActionRepo struct {
	db db.DBTX
}

// NewSQLiteActionRepo creates a new SQLiteActionRepo.
func NewSQLiteActionRepo(db db.DBTX) *SQLiteActionRepo {
	return &SQLiteActionRepo{db: db}
}

func (r *SQLiteActionRepo) Create(ctx context.Context, a *domain.Action) error {
	if err := a.Validate(); err != nil {
		return err
	}
	status := a.Status
	if status == "" {
		status = domain.ActionToSchedule
	}
	query := `INSERT INTO actions (id, title, axis, building_code, owner_id, milestone_id,
		status, progress, planned_start, planned_end, actual_end, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var milestoneID any
	if a.MilestoneID != nil {
		milestoneID = *a.MilestoneID
	}
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.Title,
		a.Axis,
		a.BuildingCode,
		a.OwnerID,
		milestoneID,
		string(status),
		a.Progress,
		nullableTimeToString(a.PlannedStart, dateLayout),
		nullableTimeToString(a.PlannedEnd, dateLayout),
		nullableTimeToString(a.ActualEnd, dateLayout),
		a.CreatedAt.UTC().Format(time.RFC3339),
		a.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting action: %w", err)
	}

	for _, p := range a.Prerequisites {
		kind := p.Kind
		if kind == "" {
			kind = domain.LinkBlocking
		}
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO action_prerequisites (action_id, prerequisite_id, kind) VALUES (?, ?, ?)`,
			a.ID, p.ActionID, string(kind))
		if err != nil {
			return fmt.Errorf("inserting action prerequisite: %w", err)
		}
	}
	return nil
}

func (r *SQLiteActionRepo) GetByID(ctx context.Context, id string) (*domain.Action, error) {
	query := `SELECT ` + actionColumns + ` FROM actions WHERE id = ?`
	a, err := r.scanAction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.attachPrerequisites(ctx, []*domain.Action{a}); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *SQLiteActionRepo) List(ctx context.Context, f ActionFilter) ([]*domain.Action, error) {
	query := `SELECT ` + actionColumns + ` FROM actions WHERE 1 = 1`
	var args []any
	if f.Axis != "" {
		query += ` AND axis = ?`
		args = append(args, f.Axis)
	}
	if f.BuildingCode != "" {
		query += ` AND building_code = ?`
		args = append(args, f.BuildingCode)
	}
	if len(f.IDs) > 0 {
		query += ` AND id IN (` + placeholders(len(f.IDs)) + `)`
		args = append(args, stringsToArgs(f.IDs)...)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing actions: %w", err)
	}
	actions, err := r.scanActions(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if err := r.attachPrerequisites(ctx, actions); err != nil {
		return nil, err
	}
	return actions, nil
}

func (r *SQLiteActionRepo) UpdateDerived(ctx context.Context, id string, patch ActionPatch) error {
	set := ""
	var args []any
	if patch.Status != nil {
		set += "status = ?, "
		args = append(args, string(*patch.Status))
	}
	if patch.PlannedStart != nil {
		set += "planned_start = ?, "
		args = append(args, patch.PlannedStart.UTC().Format(dateLayout))
	}
	if patch.PlannedEnd != nil {
		set += "planned_end = ?, "
		args = append(args, patch.PlannedEnd.UTC().Format(dateLayout))
	}
	if set == "" {
		return nil
	}
	query := `UPDATE actions SET ` + set + `updated_at = ? WHERE id = ?`
	args = append(args, nowUTC(), id)
	return r.execOne(ctx, query, args, "updating action")
}

func (r *SQLiteActionRepo) BulkUpdateDates(ctx context.Context, shifts []DateShift) error {
	for _, s := range shifts {
		err := r.UpdateDerived(ctx, s.ActionID, ActionPatch{PlannedStart: s.PlannedStart, PlannedEnd: s.PlannedEnd})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteActionRepo) UpdateProgress(ctx context.Context, id string, progress int, actualEnd *time.Time) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("progress %d out of range [0,100]", progress)
	}
	query := `UPDATE actions SET progress = ?, actual_end = ?, updated_at = ? WHERE id = ?`
	args := []any{progress, nullableTimeToString(actualEnd, dateLayout), nowUTC(), id}
	return r.execOne(ctx, query, args, "updating action progress")
}

func (r *SQLiteActionRepo) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM actions WHERE id = ?`, []any{id}, "deleting action")
}

func (r *SQLiteActionRepo) execOne(ctx context.Context, query string, args []any, op string) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("action %s: %w", args[len(args)-1], ErrNotFound)
	}
	return nil
}

// attachPrerequisites loads prerequisite edges for the given actions in one query.
func (r *SQLiteActionRepo) attachPrerequisites(ctx context.Context, actions []*domain.Action) error {
	if len(actions) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Action, len(actions))
	ids := make([]string, 0, len(actions))
	for _, a := range actions {
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	query := `SELECT action_id, prerequisite_id, kind FROM action_prerequisites
		WHERE action_id IN (` + placeholders(len(ids)) + `)
		ORDER BY action_id, prerequisite_id`
	rows, err := r.db.QueryContext(ctx, query, stringsToArgs(ids)...)
	if err != nil {
		return fmt.Errorf("listing action prerequisites: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var actionID, prereqID, kind string
		if err := rows.Scan(&actionID, &prereqID, &kind); err != nil {
			return fmt.Errorf("scanning action prerequisite: %w", err)
		}
		if a, ok := byID[actionID]; ok {
			a.Prerequisites = append(a.Prerequisites, domain.Prerequisite{ActionID: prereqID, Kind: domain.LinkKind(kind)})
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating action prerequisites: %w", err)
	}
	return nil
}

func populateAction(s rowScanner) (*domain.Action, error) {
	var a domain.Action
	var status, createdAt, updatedAt string
	var milestoneID, plannedStart, plannedEnd, actualEnd sql.NullString

	err := s.Scan(
		&a.ID, &a.Title, &a.Axis, &a.BuildingCode, &a.OwnerID, &milestoneID,
		&status, &a.Progress, &plannedStart, &plannedEnd, &actualEnd, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = domain.ActionStatus(status)
	if milestoneID.Valid {
		a.MilestoneID = &milestoneID.String
	}
	a.PlannedStart = parseNullableTime(plannedStart, dateLayout)
	a.PlannedEnd = parseNullableTime(plannedEnd, dateLayout)
	a.ActualEnd = parseNullableTime(actualEnd, dateLayout)
	a.CreatedAt = parseTime(createdAt, time.RFC3339)
	a.UpdatedAt = parseTime(updatedAt, time.RFC3339)
	return &a, nil
}

func (r *SQLiteActionRepo) scanAction(row *sql.Row) (*domain.Action, error) {
	a, err := populateAction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("action: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning action: %w", err)
	}
	return a, nil
}

func (r *SQLiteActionRepo) scanActions(rows *sql.Rows) ([]*domain.Action, error) {
	var actions []*domain.Action
	for rows.Next() {
		a, err := populateAction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning action: %w", err)
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating actions: %w", err)
	}
	return actions, nil
}
