package engine

import (
	"testing"
	"time"

	"github.com/alexanderramin/pilotage/internal/config"
	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/alexanderramin/pilotage/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conditions(alerts []*domain.Alert) map[AlertKey]domain.AlertSeverity {
	out := make(map[AlertKey]domain.AlertSeverity)
	for _, a := range alerts {
		out[KeyOf(a)] = a.Severity
	}
	return out
}

func TestDetectAlerts(t *testing.T) {
	late := testutil.NewTestAction("late", testutil.WithPlanned(testutil.Day(-10), testutil.Day(-1)))
	blocked := testutil.NewTestAction("blocked", testutil.WithActionStatus(domain.ActionBlocked))
	doneLate := testutil.NewTestAction("done", testutil.WithPlanned(testutil.Day(-10), testutil.Day(-1)), testutil.WithActionStatus(domain.ActionDone))
	overdue := testutil.NewTestMilestone("m1", testutil.Day(-3), testutil.WithMilestoneStatus(domain.MilestoneOverdue))
	danger := testutil.NewTestMilestone("m2", testutil.Day(5), testutil.WithMilestoneStatus(domain.MilestoneInDanger))
	calm := testutil.NewTestMilestone("m3", testutil.Day(50))
	critical := testutil.NewTestRisk("r1", 5, 5, testutil.WithScore(25))
	major := testutil.NewTestRisk("r2", 3, 4, testutil.WithScore(12))
	closed := testutil.NewTestRisk("r3", 5, 5, testutil.WithScore(25), testutil.WithRiskStatus(domain.RiskClosed))

	got := conditions(DetectAlerts(AlertInput{
		Actions:    []*domain.Action{late, blocked, doneLate},
		Milestones: []*domain.Milestone{overdue, danger, calm},
		Risks:      []*domain.Risk{critical, major, closed},
		Gap:        &SyncGap{Gap: 20, Class: domain.SyncCritical},
		Today:      testutil.Today,
		RiskBands:  config.DefaultConfig().Risk,
	}))

	want := map[AlertKey]domain.AlertSeverity{
		{domain.EntityAction, late.ID, domain.AlertActionLate}:               domain.SeverityWarning,
		{domain.EntityAction, blocked.ID, domain.AlertActionBlocked}:         domain.SeverityWarning,
		{domain.EntityMilestone, overdue.ID, domain.AlertMilestoneOverdue}:   domain.SeverityCritical,
		{domain.EntityMilestone, danger.ID, domain.AlertMilestoneDanger}:     domain.SeverityWarning,
		{domain.EntityRisk, critical.ID, domain.AlertRiskCritical}:           domain.SeverityCritical,
		{domain.EntityPortfolio, PortfolioEntityID, domain.AlertSyncCritical}: domain.SeverityCritical,
	}
	assert.Equal(t, want, got)
}

func TestDetectAlerts_PlannedEndTodayIsNotLate(t *testing.T) {
	a := testutil.NewTestAction("a", testutil.WithPlanned(testutil.Day(-3), testutil.Day(0)))

	got := DetectAlerts(AlertInput{Actions: []*domain.Action{a}, Today: testutil.Today.Add(15 * time.Hour)})

	assert.Empty(t, got)
}

func TestDetectAlerts_RiskScoredFromInputs(t *testing.T) {
	fresh := testutil.NewTestRisk("new", 4, 4)
	downgraded := testutil.NewTestRisk("edited", 2, 2, testutil.WithScore(25))

	alerts := DetectAlerts(AlertInput{
		Risks:     []*domain.Risk{fresh, downgraded},
		Today:     testutil.Today,
		RiskBands: config.DefaultConfig().Risk,
	})

	got := conditions(alerts)
	assert.Contains(t, got, AlertKey{domain.EntityRisk, fresh.ID, domain.AlertRiskCritical})
	assert.NotContains(t, got, AlertKey{domain.EntityRisk, downgraded.ID, domain.AlertRiskCritical})
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Message, "score 16")
}

func TestStaleAlerts(t *testing.T) {
	keep := &domain.Alert{ID: "1", EntityType: domain.EntityAction, EntityID: "a", Condition: domain.AlertActionLate}
	drop := &domain.Alert{ID: "2", EntityType: domain.EntityAction, EntityID: "b", Condition: domain.AlertActionBlocked}
	active := []*domain.Alert{{EntityType: domain.EntityAction, EntityID: "a", Condition: domain.AlertActionLate}}

	stale := StaleAlerts([]*domain.Alert{keep, drop}, active)

	require.Len(t, stale, 1)
	assert.Equal(t, "2", stale[0].ID)
}

func TestDuplicateBudgetLines_KeepsOldest(t *testing.T) {
	oldest := testutil.NewTestBudgetLine("technique", "HVAC", 100, 10, 5)
	oldest.CreatedAt = testutil.Day(-3)
	dup1 := testutil.NewTestBudgetLine("technique", "HVAC", 100, 10, 5)
	dup1.CreatedAt = testutil.Day(-1)
	dup2 := testutil.NewTestBudgetLine("technique", "HVAC", 100, 10, 5)
	dup2.CreatedAt = testutil.Day(0)
	distinct := testutil.NewTestBudgetLine("technique", "HVAC", 100, 10, 6)

	got := DuplicateBudgetLines([]*domain.BudgetLineItem{dup2, distinct, oldest, dup1})

	require.Len(t, got, 2)
	ids := []string{got[0].ID, got[1].ID}
	assert.ElementsMatch(t, []string{dup1.ID, dup2.ID}, ids)
}
