package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/pilotage/internal/db"
	"github.com/alexanderramin/pilotage/internal/domain"
)

// SQLiteBudgetRepo implements BudgetRepo using a SQLite database.
type SQLiteBudgetRepo struct {
	db db.DBTX
}

// NewSQLiteBudgetRepo creates a new SQLiteBudgetRepo.
func NewSQLiteBudgetRepo(db db.DBTX) *SQLiteBudgetRepo {
	return &SQLiteBudgetRepo{db: db}
}

func (r *SQLiteBudgetRepo) Create(ctx context.Context, b *domain.BudgetLineItem) error {
	query := `INSERT INTO budget_lines (id, category, axis, label, planned_amount, committed_amount,
		actual_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.Category, b.Axis, b.Label,
		b.PlannedAmount, b.CommittedAmount, b.ActualAmount,
		b.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting budget line: %w", err)
	}
	return nil
}

// List returns all budget lines, oldest first.
func (r *SQLiteBudgetRepo) List(ctx context.Context) ([]*domain.BudgetLineItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, category, axis, label, planned_amount,
		committed_amount, actual_amount, created_at
		FROM budget_lines ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing budget lines: %w", err)
	}
	defer rows.Close()

	var lines []*domain.BudgetLineItem
	for rows.Next() {
		var b domain.BudgetLineItem
		var createdAt string
		if err := rows.Scan(&b.ID, &b.Category, &b.Axis, &b.Label, &b.PlannedAmount,
			&b.CommittedAmount, &b.ActualAmount, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning budget line: %w", err)
		}
		b.CreatedAt = parseTime(createdAt, timestampLayout)
		lines = append(lines, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budget lines: %w", err)
	}
	return lines, nil
}

func (r *SQLiteBudgetRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budget_lines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting budget line: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("budget line %s: %w", id, ErrNotFound)
	}
	return nil
}
