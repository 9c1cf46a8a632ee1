package service

import (
	"errors"
	"testing"

	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/alexanderramin/pilotage/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupeBudgetLines_KeepsOldestAndAudits(t *testing.T) {
	h := newHarness(t)
	oldest := testutil.NewTestBudgetLine("technique", "CVC", 1200, 300, 100)
	oldest.CreatedAt = testutil.Day(-3)
	copy1 := testutil.NewTestBudgetLine("technique", "CVC", 1200, 300, 100)
	copy1.CreatedAt = testutil.Day(-1)
	other := testutil.NewTestBudgetLine("technique", "CVC", 1200, 300, 150)
	for _, l := range []*domain.BudgetLineItem{copy1, oldest, other} {
		require.NoError(t, h.budget.Create(h.ctx, l))
	}
	svc := h.budgetService(nil)

	res, err := svc.DedupeBudgetLines(h.ctx, recomputeAt())
	require.NoError(t, err)

	assert.Equal(t, []string{copy1.ID}, res.RemovedIDs)
	lines, err := h.budget.List(h.ctx)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, oldest.ID, lines[0].ID)

	entries, err := h.audits.ListByEntity(h.ctx, domain.EntityBudget, copy1.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, copy1.DedupeKey(), entries[0].OldValue)

	again, err := svc.DedupeBudgetLines(h.ctx, recomputeAt())
	require.NoError(t, err)
	assert.Zero(t, again.Removed)
}

func TestDedupeBudgetLines_AuditFailureKeepsRow(t *testing.T) {
	h := newHarness(t)
	a := testutil.NewTestBudgetLine("rh", "formation", 50, 0, 0)
	a.CreatedAt = testutil.Day(-2)
	b := testutil.NewTestBudgetLine("rh", "formation", 50, 0, 0)
	require.NoError(t, h.budget.Create(h.ctx, a))
	require.NoError(t, h.budget.Create(h.ctx, b))

	// write 1 deletes the row, write 2 appends the audit entry
	res, err := h.budgetService(testutil.FailOnNthExec(h.db, 2, errors.New("audit down"))).DedupeBudgetLines(h.ctx, recomputeAt())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped)
	lines, err := h.budget.List(h.ctx)
	require.NoError(t, err)
	assert.Len(t, lines, 2, "delete rolled back with its audit")
}
