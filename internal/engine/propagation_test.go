package engine

import (
	"errors"
	"testing"

	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/alexanderramin/pilotage/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDelayPreview_ShiftsEveryTarget(t *testing.T) {
	src := testutil.NewTestAction("pose cloisons",
		testutil.WithPlanned(testutil.Day(-20), testutil.Day(-5)),
		testutil.WithActualEnd(testutil.Day(0)))
	t1 := testutil.NewTestAction("info usagers", testutil.WithAxis("usagers"), testutil.WithPlanned(testutil.Day(1), testutil.Day(4)))
	t2 := testutil.NewTestAction("formation", testutil.WithAxis("rh"), testutil.WithPlanned(testutil.Day(2), testutil.Day(9)))
	t3 := testutil.NewTestAction("demenagement", testutil.WithAxis("logistique"), testutil.WithPlanned(testutil.Day(10), testutil.Day(12)))

	l1 := testutil.NewTestSyncLink(src.ID, t1.ID, t2.ID)
	l1.LagDays = 2
	l2 := testutil.NewTestSyncLink(src.ID, t2.ID, t3.ID)

	preview, err := BuildDelayPreview(src, []*domain.SyncLink{l1, l2}, actionMap(t1, t2, t3), testutil.Today)
	require.NoError(t, err)

	assert.Equal(t, 5, preview.RetardJours)
	assert.Equal(t, "pose cloisons", preview.SourceTitle)
	require.Len(t, preview.ImpactedActions, 3, "targets named twice appear once")
	for _, imp := range preview.ImpactedActions {
		assert.Equal(t, 5, imp.DecalageJours)
		assert.Equal(t, 5, domain.DaysBetween(*imp.OldStart, *imp.NewStart))
		assert.Equal(t, 5, domain.DaysBetween(*imp.OldEnd, *imp.NewEnd))
	}
	assert.Equal(t, l1.ID, preview.ImpactedActions[1].LinkID)
	assert.Equal(t, 2, preview.ImpactedActions[0].LagDays)
}

func TestBuildDelayPreview_OnTimeIsEmpty(t *testing.T) {
	tgt := testutil.NewTestAction("t", testutil.WithPlanned(testutil.Day(1), testutil.Day(4)))
	link := testutil.NewTestSyncLink("src", tgt.ID)

	tests := []struct {
		name string
		src  *domain.Action
	}{
		{"no actual end", testutil.NewTestAction("s", testutil.WithPlanned(testutil.Day(-5), testutil.Day(0)))},
		{"early", testutil.NewTestAction("s", testutil.WithPlanned(testutil.Day(-5), testutil.Day(0)), testutil.WithActualEnd(testutil.Day(-2)))},
		{"on time", testutil.NewTestAction("s", testutil.WithPlanned(testutil.Day(-5), testutil.Day(0)), testutil.WithActualEnd(testutil.Day(0)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preview, err := BuildDelayPreview(tt.src, []*domain.SyncLink{link}, actionMap(tgt), testutil.Today)
			require.NoError(t, err)
			assert.True(t, preview.IsEmpty())
			assert.Equal(t, 0, preview.RetardJours)
		})
	}
}

func TestBuildDelayPreview_MissingTarget(t *testing.T) {
	src := testutil.NewTestAction("s", testutil.WithPlanned(testutil.Day(-5), testutil.Day(0)), testutil.WithActualEnd(testutil.Day(3)))
	present := testutil.NewTestAction("t", testutil.WithPlanned(testutil.Day(1), testutil.Day(4)))
	link := testutil.NewTestSyncLink(src.ID, present.ID, "ghost")

	preview, err := BuildDelayPreview(src, []*domain.SyncLink{link}, actionMap(present), testutil.Today)

	assert.Nil(t, preview)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestBuildDelayPreview_UnscheduledTargetNotImpacted(t *testing.T) {
	src := testutil.NewTestAction("s", testutil.WithPlanned(testutil.Day(-5), testutil.Day(0)), testutil.WithActualEnd(testutil.Day(3)))
	tgt := testutil.NewTestAction("t")
	scheduled := testutil.NewTestAction("u", testutil.WithPlanned(testutil.Day(4), testutil.Day(8)))

	preview, err := BuildDelayPreview(src, []*domain.SyncLink{testutil.NewTestSyncLink(src.ID, tgt.ID, scheduled.ID)}, actionMap(tgt, scheduled), testutil.Today)
	require.NoError(t, err)
	require.Len(t, preview.ImpactedActions, 1)
	assert.Equal(t, scheduled.ID, preview.ImpactedActions[0].ID)
	assert.Equal(t, []string{tgt.ID}, preview.Unscheduled)
}

func TestBuildDelayPreview_OnlyUnscheduledTargetsIsEmpty(t *testing.T) {
	src := testutil.NewTestAction("s", testutil.WithPlanned(testutil.Day(-5), testutil.Day(0)), testutil.WithActualEnd(testutil.Day(3)))
	tgt := testutil.NewTestAction("t")

	preview, err := BuildDelayPreview(src, []*domain.SyncLink{testutil.NewTestSyncLink(src.ID, tgt.ID)}, actionMap(tgt), testutil.Today)
	require.NoError(t, err)
	assert.True(t, preview.IsEmpty())
	assert.Equal(t, 3, preview.RetardJours)
}

func TestTargetIDs(t *testing.T) {
	links := []*domain.SyncLink{
		testutil.NewTestSyncLink("s", "a", "b"),
		testutil.NewTestSyncLink("s", "b", "c"),
	}
	assert.Equal(t, []string{"a", "b", "c"}, TargetIDs(links))
}
