package service

import (
	"errors"
	"testing"

	"github.com/alexanderramin/pilotage/internal/app"
	"github.com/alexanderramin/pilotage/internal/config"
	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/alexanderramin/pilotage/internal/engine"
	"github.com/alexanderramin/pilotage/internal/repository"
	"github.com/alexanderramin/pilotage/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedDelay stores a source finished 5 days late and three linked targets.
func seedDelay(h *harness) (*domain.Action, []*domain.Action) {
	h.t.Helper()
	src := testutil.NewTestAction("livraison lot 2",
		testutil.WithPlanned(testutil.Day(-30), testutil.Day(-5)),
		testutil.WithActualEnd(testutil.Day(0)),
		testutil.WithProgress(100))
	targets := []*domain.Action{
		testutil.NewTestAction("briefing", testutil.WithAxis("usagers"), testutil.WithPlanned(testutil.Day(1), testutil.Day(3))),
		testutil.NewTestAction("formation", testutil.WithAxis("rh"), testutil.WithPlanned(testutil.Day(2), testutil.Day(8))),
		testutil.NewTestAction("demenagement", testutil.WithAxis("logistique"), testutil.WithPlanned(testutil.Day(10), testutil.Day(14))),
	}
	h.addActions(append([]*domain.Action{src}, targets...)...)

	// links list by id
	l1 := testutil.NewTestSyncLink(src.ID, targets[0].ID, targets[1].ID)
	l1.ID, l1.LagDays = "link-1", 1
	l2 := testutil.NewTestSyncLink(src.ID, targets[1].ID, targets[2].ID)
	l2.ID = "link-2"
	require.NoError(h.t, h.links.Create(h.ctx, l1))
	require.NoError(h.t, h.links.Create(h.ctx, l2))
	return src, targets
}

func previewFor(t *testing.T, h *harness, svc DelayService, sourceID string) *engine.DelayPreview {
	t.Helper()
	now := testutil.Today
	preview, err := svc.PreviewDelay(h.ctx, app.DelayPreviewRequest{SourceActionID: sourceID, Now: &now})
	require.NoError(t, err)
	return preview
}

func confirmed() app.Confirmation {
	return app.Confirmation{Actor: "chef.projet", Confirmed: true}
}

func TestPreviewDelay_FiveDaysOnThreeTargets(t *testing.T) {
	h := newHarness(t)
	src, targets := seedDelay(h)

	preview := previewFor(t, h, h.delayService(nil), src.ID)

	assert.Equal(t, 5, preview.RetardJours)
	require.Len(t, preview.ImpactedActions, 3)
	for i, imp := range preview.ImpactedActions {
		assert.Equal(t, targets[i].ID, imp.ID)
		assert.Equal(t, 5, imp.DecalageJours)
		assert.True(t, imp.NewEnd.Equal(domain.AddDays(*targets[i].PlannedEnd, 5)))
	}
	assert.Zero(t, h.auditCount(), "preview never writes")
}

func TestPreviewDelay_MissingSource(t *testing.T) {
	h := newHarness(t)

	_, err := h.delayService(nil).PreviewDelay(h.ctx, app.DelayPreviewRequest{SourceActionID: "ghost"})

	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestPreviewDelay_MissingTargetFailsWhole(t *testing.T) {
	h := newHarness(t)
	src, targets := seedDelay(h)
	require.NoError(t, h.actions.Delete(h.ctx, targets[2].ID))

	_, err := h.delayService(nil).PreviewDelay(h.ctx, app.DelayPreviewRequest{SourceActionID: src.ID})

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestApplyDelay_RequiresConfirmation(t *testing.T) {
	h := newHarness(t)
	src, targets := seedDelay(h)
	svc := h.delayService(nil)
	preview := previewFor(t, h, svc, src.ID)

	_, err := svc.ApplyDelay(h.ctx, app.ApplyDelayRequest{Preview: preview, Confirmation: app.Confirmation{Actor: "x"}})

	assert.ErrorIs(t, err, ErrConfirmationRequired)
	assert.True(t, h.action(targets[0].ID).PlannedStart.Equal(testutil.Day(1)))
}

func TestApplyDelay_TransactionalShiftsAndAudits(t *testing.T) {
	h := newHarness(t)
	src, targets := seedDelay(h)
	svc := h.delayService(nil)
	preview := previewFor(t, h, svc, src.ID)

	res, err := svc.ApplyDelay(h.ctx, app.ApplyDelayRequest{Preview: preview, Confirmation: confirmed()})
	require.NoError(t, err)

	assert.Equal(t, config.DelayTransactional, res.Mode)
	assert.Equal(t, 3, res.AppliedCount)
	assert.Empty(t, res.FailedIDs)
	for _, tgt := range targets {
		got := h.action(tgt.ID)
		assert.True(t, got.PlannedStart.Equal(domain.AddDays(*tgt.PlannedStart, 5)))
		assert.True(t, got.PlannedEnd.Equal(domain.AddDays(*tgt.PlannedEnd, 5)))

		entries, err := h.audits.ListByEntity(h.ctx, domain.EntityAction, tgt.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1, "one audit entry per mutated record")
		assert.Equal(t, "planned_dates", entries[0].Field)
		assert.Equal(t, "chef.projet", entries[0].Actor)
	}
	assert.Equal(t, "2025-06-17..2025-06-19", mustAudit(t, h, targets[0].ID).OldValue)
	assert.Equal(t, "2025-06-22..2025-06-24", mustAudit(t, h, targets[0].ID).NewValue)
}

func TestApplyDelay_UnscheduledTargetNotWrittenOrAudited(t *testing.T) {
	for _, mode := range []config.DelayApplyMode{config.DelayTransactional, config.DelaySequential} {
		t.Run(string(mode), func(t *testing.T) {
			h := newHarness(t).withConfig(func(c *config.Config) { c.Delay.ApplyMode = mode })
			src := testutil.NewTestAction("gros oeuvre",
				testutil.WithPlanned(testutil.Day(-20), testutil.Day(-5)),
				testutil.WithActualEnd(testutil.Day(0)))
			floating := testutil.NewTestAction("signaletique")
			scheduled := testutil.NewTestAction("mobilier", testutil.WithPlanned(testutil.Day(2), testutil.Day(6)))
			h.addActions(src, floating, scheduled)
			require.NoError(t, h.links.Create(h.ctx, testutil.NewTestSyncLink(src.ID, floating.ID, scheduled.ID)))
			svc := h.delayService(nil)

			preview := previewFor(t, h, svc, src.ID)
			require.Len(t, preview.ImpactedActions, 1)
			assert.Equal(t, []string{floating.ID}, preview.Unscheduled)

			res, err := svc.ApplyDelay(h.ctx, app.ApplyDelayRequest{Preview: preview, Confirmation: confirmed()})
			require.NoError(t, err)
			assert.Equal(t, 1, res.AppliedCount)
			assert.Equal(t, 1, h.auditCount())

			entries, err := h.audits.ListByEntity(h.ctx, domain.EntityAction, floating.ID)
			require.NoError(t, err)
			assert.Empty(t, entries)
			assert.Nil(t, h.action(floating.ID).PlannedStart)
		})
	}
}

func TestApplyDelay_IgnoresDatelessEntries(t *testing.T) {
	h := newHarness(t)
	floating := testutil.NewTestAction("signaletique")
	h.addActions(floating)
	preview := &engine.DelayPreview{
		SourceID:        "src",
		RetardJours:     5,
		ImpactedActions: []engine.ImpactedAction{{ID: floating.ID, Title: floating.Title, DecalageJours: 5}},
	}

	res, err := h.delayService(nil).ApplyDelay(h.ctx, app.ApplyDelayRequest{Preview: preview, Confirmation: confirmed()})
	require.NoError(t, err)

	assert.Zero(t, res.AppliedCount)
	assert.Zero(t, h.auditCount())
}

func mustAudit(t *testing.T, h *harness, id string) *domain.AuditEntry {
	t.Helper()
	entries, err := h.audits.ListByEntity(h.ctx, domain.EntityAction, id)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	return entries[0]
}

func TestApplyDelay_StalePreviewRejected(t *testing.T) {
	h := newHarness(t)
	src, targets := seedDelay(h)
	svc := h.delayService(nil)
	preview := previewFor(t, h, svc, src.ID)

	moved := testutil.Day(20)
	require.NoError(t, h.actions.UpdateDerived(h.ctx, targets[1].ID, repository.ActionPatch{PlannedEnd: &moved}))

	_, err := svc.ApplyDelay(h.ctx, app.ApplyDelayRequest{Preview: preview, Confirmation: confirmed()})

	assert.ErrorIs(t, err, ErrStalePreview)
	var derr *app.DelayError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, app.DelayErrStalePreview, derr.Code)
	assert.True(t, h.action(targets[0].ID).PlannedStart.Equal(testutil.Day(1)), "nothing applied")
	assert.Zero(t, h.auditCount())
}

func TestApplyDelay_TransactionalRollsBackOnFailure(t *testing.T) {
	h := newHarness(t)
	src, targets := seedDelay(h)
	preview := previewFor(t, h, h.delayService(nil), src.ID)

	// writes 1-3 shift dates, 4-6 append audits
	uow := testutil.FailOnNthExec(h.db, 5, errors.New("injected audit failure"))
	res, err := h.delayService(uow).ApplyDelay(h.ctx, app.ApplyDelayRequest{Preview: preview, Confirmation: confirmed()})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected audit failure")
	assert.Zero(t, res.AppliedCount)
	assert.Len(t, res.FailedIDs, 3)
	for _, tgt := range targets {
		assert.True(t, h.action(tgt.ID).PlannedStart.Equal(*tgt.PlannedStart), "rolled back")
	}
	assert.Zero(t, h.auditCount())
}

func TestApplyDelay_SequentialKeepsEarlierWrites(t *testing.T) {
	h := newHarness(t).withConfig(func(c *config.Config) { c.Delay.ApplyMode = config.DelaySequential })
	src, targets := seedDelay(h)
	preview := previewFor(t, h, h.delayService(nil), src.ID)

	uow := testutil.FailOnExecWithArg(h.db, targets[1].ID, errors.New("locked"))
	res, err := h.delayService(uow).ApplyDelay(h.ctx, app.ApplyDelayRequest{Preview: preview, Confirmation: confirmed()})
	require.NoError(t, err)

	assert.Equal(t, config.DelaySequential, res.Mode)
	assert.Equal(t, 2, res.AppliedCount)
	assert.Equal(t, []string{targets[1].ID}, res.FailedIDs)
	assert.True(t, h.action(targets[0].ID).PlannedStart.Equal(testutil.Day(6)))
	assert.True(t, h.action(targets[1].ID).PlannedStart.Equal(testutil.Day(2)))
	assert.True(t, h.action(targets[2].ID).PlannedStart.Equal(testutil.Day(15)))
	assert.Equal(t, 2, h.auditCount())
}

func TestApplyDelay_EmptyPreviewIsNoop(t *testing.T) {
	h := newHarness(t)
	onTime := testutil.NewTestAction("on time", testutil.WithPlanned(testutil.Day(-5), testutil.Day(0)), testutil.WithActualEnd(testutil.Day(0)))
	h.addActions(onTime)
	svc := h.delayService(nil)
	preview := previewFor(t, h, svc, onTime.ID)

	res, err := svc.ApplyDelay(h.ctx, app.ApplyDelayRequest{Preview: preview, Confirmation: confirmed()})
	require.NoError(t, err)

	assert.Zero(t, res.AppliedCount)
	assert.Zero(t, h.auditCount())
}
