package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/pilotage/internal/config"
	"github.com/alexanderramin/pilotage/internal/db"
	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/alexanderramin/pilotage/internal/repository"
	"github.com/alexanderramin/pilotage/internal/testutil"
	"github.com/stretchr/testify/require"
)

// harness wires every repository over one in-memory database.
type harness struct {
	t          *testing.T
	ctx        context.Context
	db         *sql.DB
	uow        db.UnitOfWork
	cfg        *config.Source
	actions    *repository.SQLiteActionRepo
	milestones *repository.SQLiteMilestoneRepo
	links      *repository.SQLiteSyncLinkRepo
	risks      *repository.SQLiteRiskRepo
	riskLinks  *repository.SQLiteRiskLinkRepo
	budget     *repository.SQLiteBudgetRepo
	audits     *repository.SQLiteAuditRepo
	alerts     *repository.SQLiteAlertRepo
	snapshots  *repository.SQLiteSnapshotRepo
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	database := testutil.NewTestDB(t)
	return &harness{
		t:          t,
		ctx:        context.Background(),
		db:         database,
		uow:        testutil.NewTestUoW(database),
		cfg:        config.StaticSource(config.DefaultConfig()),
		actions:    repository.NewSQLiteActionRepo(database),
		milestones: repository.NewSQLiteMilestoneRepo(database),
		links:      repository.NewSQLiteSyncLinkRepo(database),
		risks:      repository.NewSQLiteRiskRepo(database),
		riskLinks:  repository.NewSQLiteRiskLinkRepo(database),
		budget:     repository.NewSQLiteBudgetRepo(database),
		audits:     repository.NewSQLiteAuditRepo(database),
		alerts:     repository.NewSQLiteAlertRepo(database),
		snapshots:  repository.NewSQLiteSnapshotRepo(database),
	}
}

func (h *harness) withConfig(mutate func(*config.Config)) *harness {
	cfg := config.DefaultConfig()
	mutate(&cfg)
	h.cfg = config.StaticSource(cfg)
	return h
}

func (h *harness) addActions(actions ...*domain.Action) {
	h.t.Helper()
	for _, a := range actions {
		require.NoError(h.t, h.actions.Create(h.ctx, a))
	}
}

func (h *harness) addMilestones(milestones ...*domain.Milestone) {
	h.t.Helper()
	for _, m := range milestones {
		require.NoError(h.t, h.milestones.Create(h.ctx, m))
	}
}

func (h *harness) addRisks(risks ...*domain.Risk) {
	h.t.Helper()
	for _, r := range risks {
		require.NoError(h.t, h.risks.Create(h.ctx, r))
	}
}

func (h *harness) action(id string) *domain.Action {
	h.t.Helper()
	a, err := h.actions.GetByID(h.ctx, id)
	require.NoError(h.t, err)
	return a
}

func (h *harness) milestone(id string) *domain.Milestone {
	h.t.Helper()
	m, err := h.milestones.GetByID(h.ctx, id)
	require.NoError(h.t, err)
	return m
}

func (h *harness) auditCount() int {
	h.t.Helper()
	n, err := h.audits.Count(h.ctx)
	require.NoError(h.t, err)
	return n
}

func (h *harness) statusService(uow db.UnitOfWork) StatusService {
	if uow == nil {
		uow = h.uow
	}
	return NewStatusService(h.actions, h.milestones, uow, h.cfg, nil)
}

func (h *harness) delayService(uow db.UnitOfWork) DelayService {
	if uow == nil {
		uow = h.uow
	}
	return NewDelayService(h.actions, h.links, uow, h.cfg, nil)
}

func (h *harness) riskService() RiskService {
	return NewRiskService(h.risks, h.riskLinks, h.actions, h.uow, h.cfg, nil)
}

func (h *harness) performanceService() PerformanceService {
	return NewPerformanceService(h.actions, h.budget, h.snapshots, h.cfg)
}

func (h *harness) alertService() AlertService {
	return NewAlertService(h.actions, h.milestones, h.risks, h.alerts, h.cfg, nil)
}

func (h *harness) budgetService(uow db.UnitOfWork) BudgetService {
	if uow == nil {
		uow = h.uow
	}
	return NewBudgetService(h.budget, uow, nil)
}
