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

const riskColumns = `id, title, probability, impact, score, status, axis, building_code, created_at, updated_at`

// SQLiteRiskRepo implements RiskRepo using a SQLite database.
type SQLiteRiskRepo struct {
	db db.DBTX
}

// NewSQLiteRiskRepo creates a new SQLiteRiskRepo.
func NewSQLiteRiskRepo(db db.DBTX) *SQLiteRiskRepo {
	return &SQLiteRiskRepo{db: db}
}

func (r *SQLiteRiskRepo) Create(ctx context.Context, risk *domain.Risk) error {
	status := risk.Status
	if status == "" {
		status = domain.RiskOpen
	}
	score := risk.Score
	if score == 0 {
		score = 1
	}
	query := `INSERT INTO risks (id, title, probability, impact, score, status, axis, building_code,
		created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		risk.ID,
		risk.Title,
		risk.Probability,
		risk.Impact,
		score,
		string(status),
		risk.Axis,
		risk.BuildingCode,
		risk.CreatedAt.UTC().Format(time.RFC3339),
		risk.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting risk: %w", err)
	}
	return nil
}

func (r *SQLiteRiskRepo) GetByID(ctx context.Context, id string) (*domain.Risk, error) {
	query := `SELECT ` + riskColumns + ` FROM risks WHERE id = ?`
	risk, err := populateRisk(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("risk: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning risk: %w", err)
	}
	return risk, nil
}

func (r *SQLiteRiskRepo) List(ctx context.Context, f RiskFilter) ([]*domain.Risk, error) {
	query := `SELECT ` + riskColumns + ` FROM risks`
	if f.ExcludeClosed {
		query += ` WHERE status != 'closed'`
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing risks: %w", err)
	}
	defer rows.Close()

	var risks []*domain.Risk
	for rows.Next() {
		risk, err := populateRisk(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning risk: %w", err)
		}
		risks = append(risks, risk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating risks: %w", err)
	}
	return risks, nil
}

func (r *SQLiteRiskRepo) UpdateScore(ctx context.Context, id string, score int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE risks SET score = ?, updated_at = ? WHERE id = ?`,
		score, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("updating risk score: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("risk %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRiskRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM risks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting risk: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("risk %s: %w", id, ErrNotFound)
	}
	return nil
}

func populateRisk(s rowScanner) (*domain.Risk, error) {
	var risk domain.Risk
	var status, createdAt, updatedAt string
	err := s.Scan(&risk.ID, &risk.Title, &risk.Probability, &risk.Impact, &risk.Score, &status,
		&risk.Axis, &risk.BuildingCode, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	risk.Status = domain.RiskStatus(status)
	risk.CreatedAt = parseTime(createdAt, time.RFC3339)
	risk.UpdatedAt = parseTime(updatedAt, time.RFC3339)
	return &risk, nil
}

// SQLiteRiskLinkRepo implements RiskLinkRepo using a SQLite database.
type SQLiteRiskLinkRepo struct {
	db db.DBTX
}

// NewSQLiteRiskLinkRepo creates a new SQLiteRiskLinkRepo.
func NewSQLiteRiskLinkRepo(db db.DBTX) *SQLiteRiskLinkRepo {
	return &SQLiteRiskLinkRepo{db: db}
}

func (r *SQLiteRiskLinkRepo) ListAll(ctx context.Context) ([]domain.RiskActionLink, error) {
	return r.query(ctx, `SELECT risk_id, action_id, source FROM risk_action_links ORDER BY risk_id, action_id`)
}

func (r *SQLiteRiskLinkRepo) ListByRisk(ctx context.Context, riskID string) ([]domain.RiskActionLink, error) {
	return r.query(ctx, `SELECT risk_id, action_id, source FROM risk_action_links
		WHERE risk_id = ? ORDER BY action_id`, riskID)
}

// Upsert inserts the link. An existing manual link is never downgraded to auto.
func (r *SQLiteRiskLinkRepo) Upsert(ctx context.Context, l domain.RiskActionLink) error {
	source := l.Source
	if source == "" {
		source = domain.LinkSourceAuto
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO risk_action_links (risk_id, action_id, source)
		VALUES (?, ?, ?)
		ON CONFLICT(risk_id, action_id) DO UPDATE SET
			source = CASE WHEN risk_action_links.source = 'manual' THEN 'manual' ELSE excluded.source END`,
		l.RiskID, l.ActionID, source)
	if err != nil {
		return fmt.Errorf("upserting risk link: %w", err)
	}
	return nil
}

func (r *SQLiteRiskLinkRepo) Delete(ctx context.Context, riskID, actionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM risk_action_links WHERE risk_id = ? AND action_id = ?`,
		riskID, actionID)
	if err != nil {
		return fmt.Errorf("deleting risk link: %w", err)
	}
	return nil
}

func (r *SQLiteRiskLinkRepo) query(ctx context.Context, query string, args ...any) ([]domain.RiskActionLink, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing risk links: %w", err)
	}
	defer rows.Close()

	var links []domain.RiskActionLink
	for rows.Next() {
		var l domain.RiskActionLink
		if err := rows.Scan(&l.RiskID, &l.ActionID, &l.Source); err != nil {
			return nil, fmt.Errorf("scanning risk link: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating risk links: %w", err)
	}
	return links, nil
}
