package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/alexanderramin/pilotage/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogUseCaseObserver_RecordsOutcome(t *testing.T) {
	h := newHarness(t)
	var buf bytes.Buffer
	h.addActions(testutil.NewTestAction("a", testutil.WithPlanned(testutil.Day(1), testutil.Day(2))))
	svc := NewStatusService(h.actions, h.milestones, h.uow, h.cfg, nil, NewLogUseCaseObserver(&buf))

	_, err := svc.RecomputeActions(h.ctx, recomputeAt())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "use_case=recompute-actions")
	assert.Contains(t, out, "success=true")
	assert.Contains(t, out, "updated=1")
}

func TestLogUseCaseObserver_RecordsError(t *testing.T) {
	h := newHarness(t)
	var buf bytes.Buffer
	svc := NewBudgetService(h.budget, h.uow, nil, NewLogUseCaseObserver(&buf))
	require.NoError(t, h.db.Close())

	_, err := svc.DedupeBudgetLines(h.ctx, recomputeAt())
	require.Error(t, err)

	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "use_case=dedupe-budget")
}

func TestNewLogUseCaseObserver_NilWriterIsNoop(t *testing.T) {
	obs := NewLogUseCaseObserver(nil)
	_, ok := obs.(NoopUseCaseObserver)
	assert.True(t, ok)
	assert.NotPanics(t, func() { observe(t.Context(), obs, "x", testutil.Today, nil, nil) })
}

type recordingObserver struct{ events []UseCaseEvent }

func (r *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	r.events = append(r.events, e)
}

func TestUseCaseObserverOrNoop_FansOut(t *testing.T) {
	a, b := &recordingObserver{}, &recordingObserver{}
	obs := useCaseObserverOrNoop([]UseCaseObserver{a, nil, b})

	observe(t.Context(), obs, "evaluate-risks", testutil.Today, map[string]any{"updated": 2}, nil)

	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.Equal(t, "evaluate-risks", b.events[0].Name)
	assert.True(t, b.events[0].Success())
}

func TestSlogUseCaseObserver_WarnsOnSkippedEntities(t *testing.T) {
	var buf bytes.Buffer
	obs := NewSlogUseCaseObserver(slog.New(slog.NewTextHandler(&buf, nil)))

	obs.ObserveUseCase(t.Context(), UseCaseEvent{
		Name:   "recompute-actions",
		Fields: map[string]any{"updated": 3, "skipped": 1, "evaluated": 4},
	})

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Regexp(t, `evaluated=4 skipped=1 updated=3`, out)
}
