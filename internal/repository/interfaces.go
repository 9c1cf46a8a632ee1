package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/pilotage/internal/domain"
)

// ActionFilter narrows List. Zero values match everything.
type ActionFilter struct {
	Axis         string
	BuildingCode string
	IDs          []string
}

// ActionPatch carries the derived fields the engine may change. Nil fields
// are left untouched.
type ActionPatch struct {
	Status       *domain.ActionStatus
	PlannedStart *time.Time
	PlannedEnd   *time.Time
}

// DateShift is one row of a bulk planned-date update.
type DateShift struct {
	ActionID     string
	PlannedStart *time.Time
	PlannedEnd   *time.Time
}

type MilestoneFilter struct {
	Axis string
}

type MilestonePatch struct {
	Status        *domain.MilestoneStatus
	ProjectedDate *time.Time
	SlipDays      *int
}

type RiskFilter struct {
	// ExcludeClosed drops risks whose status is closed.
	ExcludeClosed bool
}

type ActionRepo interface {
	Create(ctx context.Context, a *domain.Action) error
	GetByID(ctx context.Context, id string) (*domain.Action, error)
	List(ctx context.Context, f ActionFilter) ([]*domain.Action, error)
	UpdateDerived(ctx context.Context, id string, patch ActionPatch) error
	BulkUpdateDates(ctx context.Context, shifts []DateShift) error
	UpdateProgress(ctx context.Context, id string, progress int, actualEnd *time.Time) error
	Delete(ctx context.Context, id string) error
}

type MilestoneRepo interface {
	Create(ctx context.Context, m *domain.Milestone) error
	GetByID(ctx context.Context, id string) (*domain.Milestone, error)
	List(ctx context.Context, f MilestoneFilter) ([]*domain.Milestone, error)
	UpdateDerived(ctx context.Context, id string, patch MilestonePatch) error
	Delete(ctx context.Context, id string) error
}

type SyncLinkRepo interface {
	Create(ctx context.Context, l *domain.SyncLink) error
	GetByID(ctx context.Context, id string) (*domain.SyncLink, error)
	List(ctx context.Context) ([]*domain.SyncLink, error)
	ListBySource(ctx context.Context, sourceActionID string) ([]*domain.SyncLink, error)
	Delete(ctx context.Context, id string) error
}

type RiskRepo interface {
	Create(ctx context.Context, r *domain.Risk) error
	GetByID(ctx context.Context, id string) (*domain.Risk, error)
	List(ctx context.Context, f RiskFilter) ([]*domain.Risk, error)
	UpdateScore(ctx context.Context, id string, score int) error
	Delete(ctx context.Context, id string) error
}

type RiskLinkRepo interface {
	ListAll(ctx context.Context) ([]domain.RiskActionLink, error)
	ListByRisk(ctx context.Context, riskID string) ([]domain.RiskActionLink, error)
	Upsert(ctx context.Context, l domain.RiskActionLink) error
	Delete(ctx context.Context, riskID, actionID string) error
}

type BudgetRepo interface {
	Create(ctx context.Context, b *domain.BudgetLineItem) error
	List(ctx context.Context) ([]*domain.BudgetLineItem, error)
	Delete(ctx context.Context, id string) error
}

type AuditRepo interface {
	Append(ctx context.Context, e *domain.AuditEntry) error
	ListByEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]*domain.AuditEntry, error)
	Count(ctx context.Context) (int, error)
}

type AlertRepo interface {
	// Upsert inserts the alert unless an unresolved alert already exists for
	// the same entity and condition. Reports whether a row was inserted.
	Upsert(ctx context.Context, a *domain.Alert) (bool, error)
	ListUnresolved(ctx context.Context) ([]*domain.Alert, error)
	Resolve(ctx context.Context, id string, at time.Time) error
}

type SnapshotRepo interface {
	// Record stores the snapshot unless one already exists for its calendar
	// day. Reports whether a row was inserted.
	Record(ctx context.Context, s *domain.SyncSnapshot) (bool, error)
	// LatestOnOrBefore returns the most recent snapshot taken at or before t.
	LatestOnOrBefore(ctx context.Context, t time.Time) (*domain.SyncSnapshot, error)
	List(ctx context.Context) ([]*domain.SyncSnapshot, error)
}
