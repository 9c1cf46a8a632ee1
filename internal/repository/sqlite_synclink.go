package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/pilotage/internal/db"
	"github.com/alexanderramin/pilotage/internal/domain"
)

// SQLiteSyncLinkRepo implements SyncLinkRepo using a SQLite database.
type SQLiteSyncLinkRepo struct {
	db db.DBTX
}

// NewSQLiteSyncLinkRepo creates a new SQLiteSyncLinkRepo.
func NewSQLiteSyncLinkRepo(db db.DBTX) *SQLiteSyncLinkRepo {
	return &SQLiteSyncLinkRepo{db: db}
}

func (r *SQLiteSyncLinkRepo) Create(ctx context.Context, l *domain.SyncLink) error {
	kind := l.Kind
	if kind == "" {
		kind = domain.SyncFinishToStart
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sync_links (id, source_action_id, lag_days, kind) VALUES (?, ?, ?, ?)`,
		l.ID, l.SourceActionID, l.LagDays, string(kind))
	if err != nil {
		return fmt.Errorf("inserting sync link: %w", err)
	}
	for i, target := range l.TargetActionIDs {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO sync_link_targets (link_id, action_id, position) VALUES (?, ?, ?)`,
			l.ID, target, i)
		if err != nil {
			return fmt.Errorf("inserting sync link target: %w", err)
		}
	}
	return nil
}

func (r *SQLiteSyncLinkRepo) GetByID(ctx context.Context, id string) (*domain.SyncLink, error) {
	var l domain.SyncLink
	var kind string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, source_action_id, lag_days, kind FROM sync_links WHERE id = ?`, id).
		Scan(&l.ID, &l.SourceActionID, &l.LagDays, &kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sync link: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning sync link: %w", err)
	}
	l.Kind = domain.SyncLinkKind(kind)
	links := []*domain.SyncLink{&l}
	if err := r.attachTargets(ctx, links); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *SQLiteSyncLinkRepo) List(ctx context.Context) ([]*domain.SyncLink, error) {
	return r.query(ctx, `SELECT id, source_action_id, lag_days, kind FROM sync_links ORDER BY id`)
}

func (r *SQLiteSyncLinkRepo) ListBySource(ctx context.Context, sourceActionID string) ([]*domain.SyncLink, error) {
	return r.query(ctx, `SELECT id, source_action_id, lag_days, kind FROM sync_links
		WHERE source_action_id = ? ORDER BY id`, sourceActionID)
}

func (r *SQLiteSyncLinkRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sync_links WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting sync link: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sync link %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteSyncLinkRepo) query(ctx context.Context, query string, args ...any) ([]*domain.SyncLink, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sync links: %w", err)
	}
	var links []*domain.SyncLink
	for rows.Next() {
		var l domain.SyncLink
		var kind string
		if err := rows.Scan(&l.ID, &l.SourceActionID, &l.LagDays, &kind); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning sync link: %w", err)
		}
		l.Kind = domain.SyncLinkKind(kind)
		links = append(links, &l)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("iterating sync links: %w", err)
	}
	if err := r.attachTargets(ctx, links); err != nil {
		return nil, err
	}
	return links, nil
}

func (r *SQLiteSyncLinkRepo) attachTargets(ctx context.Context, links []*domain.SyncLink) error {
	if len(links) == 0 {
		return nil
	}
	byID := make(map[string]*domain.SyncLink, len(links))
	ids := make([]string, 0, len(links))
	for _, l := range links {
		byID[l.ID] = l
		ids = append(ids, l.ID)
	}
	rows, err := r.db.QueryContext(ctx, `SELECT link_id, action_id FROM sync_link_targets
		WHERE link_id IN (`+placeholders(len(ids))+`) ORDER BY link_id, position`, stringsToArgs(ids)...)
	if err != nil {
		return fmt.Errorf("listing sync link targets: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var linkID, actionID string
		if err := rows.Scan(&linkID, &actionID); err != nil {
			return fmt.Errorf("scanning sync link target: %w", err)
		}
		if l, ok := byID[linkID]; ok {
			l.TargetActionIDs = append(l.TargetActionIDs, actionID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating sync link targets: %w", err)
	}
	return nil
}
