package service

import (
	"errors"
	"testing"

	"github.com/alexanderramin/pilotage/internal/app"
	"github.com/alexanderramin/pilotage/internal/config"
	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/alexanderramin/pilotage/internal/engine"
	"github.com/alexanderramin/pilotage/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateAllRisks_ScoresOpenRisks(t *testing.T) {
	h := newHarness(t)
	r := testutil.NewTestRisk("amiante", 3, 4)
	closed := testutil.NewTestRisk("ancien", 5, 5, testutil.WithRiskStatus(domain.RiskClosed))
	h.addRisks(r, closed)
	svc := h.riskService()

	res, err := svc.EvaluateAllRisks(h.ctx, recomputeAt())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Evaluated)
	assert.Equal(t, 1, res.Updated)
	got, err := h.risks.GetByID(h.ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Score)
	assert.Equal(t, domain.RiskMajor, engine.ClassifyRisk(got.Score, config.DefaultConfig().Risk))

	untouched, err := h.risks.GetByID(h.ctx, closed.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, untouched.Score)

	again, err := svc.EvaluateAllRisks(h.ctx, recomputeAt())
	require.NoError(t, err)
	assert.Zero(t, again.Updated)
	assert.Equal(t, 1, h.auditCount())
}

func TestEvaluateAllRisks_FailureSkipped(t *testing.T) {
	h := newHarness(t)
	bad := testutil.NewTestRisk("bad", 2, 2)
	good := testutil.NewTestRisk("good", 2, 3)
	h.addRisks(bad, good)
	svc := NewRiskService(h.risks, h.riskLinks, h.actions,
		testutil.FailOnExecWithArg(h.db, bad.ID, errors.New("boom")), h.cfg, nil)

	res, err := svc.EvaluateAllRisks(h.ctx, recomputeAt())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Skipped)
}

func seedRiskScope(h *harness) (*domain.Risk, []*domain.Action) {
	h.t.Helper()
	inScope := []*domain.Action{
		testutil.NewTestAction("desamiantage", testutil.WithBuilding("B12")),
		testutil.NewTestAction("curage", testutil.WithBuilding("B12")),
	}
	h.addActions(inScope...)
	h.addActions(testutil.NewTestAction("ailleurs", testutil.WithBuilding("B7")))
	r := testutil.NewTestRisk("amiante", 4, 4, testutil.WithRiskScope("technique", "B12"))
	h.addRisks(r)
	return r, inScope
}

func TestLinkRisksToActions_AdvisoryByDefault(t *testing.T) {
	h := newHarness(t)
	r, inScope := seedRiskScope(h)

	res, err := h.riskService().LinkRisksToActions(h.ctx, app.RiskLinkRequest{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.RisksLinked)
	assert.Equal(t, 2, res.TotalLinks)
	assert.ElementsMatch(t, []string{inScope[0].ID, inScope[1].ID}, res.Links[r.ID])
	assert.False(t, res.Persisted)

	stored, err := h.riskLinks.ListAll(h.ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestLinkRisksToActions_PersistReconciles(t *testing.T) {
	h := newHarness(t)
	r, inScope := seedRiskScope(h)
	stray := testutil.NewTestAction("stray", testutil.WithBuilding("B99"))
	manual := testutil.NewTestAction("manual", testutil.WithBuilding("B98"))
	h.addActions(stray, manual)
	require.NoError(t, h.riskLinks.Upsert(h.ctx, domain.RiskActionLink{RiskID: r.ID, ActionID: stray.ID, Source: domain.LinkSourceAuto}))
	require.NoError(t, h.riskLinks.Upsert(h.ctx, domain.RiskActionLink{RiskID: r.ID, ActionID: manual.ID, Source: domain.LinkSourceManual}))
	svc := h.riskService()

	res, err := svc.LinkRisksToActions(h.ctx, app.RiskLinkRequest{Persist: true})
	require.NoError(t, err)

	assert.True(t, res.Persisted)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Removed)

	stored, err := h.riskLinks.ListByRisk(h.ctx, r.ID)
	require.NoError(t, err)
	ids := make([]string, 0, len(stored))
	for _, l := range stored {
		ids = append(ids, l.ActionID)
	}
	assert.ElementsMatch(t, []string{inScope[0].ID, inScope[1].ID, manual.ID}, ids)

	again, err := svc.LinkRisksToActions(h.ctx, app.RiskLinkRequest{Persist: true})
	require.NoError(t, err)
	assert.Zero(t, again.Inserted)
	assert.Zero(t, again.Removed)
}

func TestLinkRisksToActions_PersistFromConfig(t *testing.T) {
	h := newHarness(t).withConfig(func(c *config.Config) { c.Risk.PersistLinks = true })
	seedRiskScope(h)

	res, err := h.riskService().LinkRisksToActions(h.ctx, app.RiskLinkRequest{})
	require.NoError(t, err)

	assert.True(t, res.Persisted)
	assert.Equal(t, 2, res.Inserted)
}
