package recalc

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/pilotage/internal/app"
	"github.com/alexanderramin/pilotage/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder implements every step use case and logs the call order.
type recorder struct {
	mu    sync.Mutex
	calls []string
	nows  []time.Time

	// gate, when set, blocks the first step until closed
	gate    chan struct{}
	entered chan struct{}

	statusErr error
	skipped   int
}

func (r *recorder) record(name string, req app.RecomputeRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
	if req.Now != nil {
		r.nows = append(r.nows, *req.Now)
	}
}

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) DedupeBudgetLines(ctx context.Context, req app.RecomputeRequest) (*app.DedupeResult, error) {
	if r.gate != nil {
		close(r.entered)
		<-r.gate
	}
	r.record(StepBudgetDedupe, req)
	return &app.DedupeResult{Removed: 1}, nil
}

func (r *recorder) RecomputeActions(ctx context.Context, req app.RecomputeRequest) (*app.RecomputeResult, error) {
	r.record(StepActions, req)
	if r.statusErr != nil {
		return nil, r.statusErr
	}
	return &app.RecomputeResult{Updated: 2, Skipped: r.skipped}, nil
}

func (r *recorder) RecomputeMilestones(ctx context.Context, req app.RecomputeRequest) (*app.RecomputeResult, error) {
	r.record(StepMilestones, req)
	return &app.RecomputeResult{Updated: 1}, nil
}

func (r *recorder) RegenerateAlerts(ctx context.Context, req app.RecomputeRequest) (*app.AlertsResult, error) {
	r.record(StepAlerts, req)
	return &app.AlertsResult{Raised: 1}, nil
}

func (r *recorder) EvaluateAllRisks(ctx context.Context, req app.RecomputeRequest) (*app.RiskEvaluation, error) {
	r.record(StepRisks, req)
	return &app.RiskEvaluation{}, nil
}

func (r *recorder) RecordSnapshot(ctx context.Context, req app.RecomputeRequest) (*app.SnapshotResult, error) {
	r.record(StepSnapshot, req)
	return &app.SnapshotResult{Recorded: true}, nil
}

func stepsOf(r *recorder) Steps {
	return Steps{Budget: r, Status: r, Alerts: r, Risks: r, Snapshot: r}
}

func fastConfig() ConfigProvider {
	cfg := config.DefaultConfig()
	cfg.Recalc.InitialDelay = 5 * time.Millisecond
	cfg.Recalc.Interval = 20 * time.Millisecond
	return config.StaticSource(cfg)
}

var allSteps = []string{StepBudgetDedupe, StepActions, StepMilestones, StepAlerts, StepRisks, StepSnapshot}

func TestTrigger_RunsStepsInOrder(t *testing.T) {
	rec := &recorder{}
	fixed := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)
	s := NewScheduler(stepsOf(rec), nil, WithClock(func() time.Time { return fixed }))

	event, ran := s.Trigger(context.Background(), TriggerManual)

	require.True(t, ran)
	assert.Equal(t, allSteps, rec.Calls())
	assert.Equal(t, 6, event.Updated())
	assert.Zero(t, event.Skipped())
	assert.Equal(t, TriggerManual, event.Trigger)
	for _, n := range rec.nows {
		assert.True(t, n.Equal(fixed), "every step sees the same clock")
	}
	assert.False(t, s.Busy())
}

func TestTrigger_WhileBusyIsNoop(t *testing.T) {
	rec := &recorder{gate: make(chan struct{}), entered: make(chan struct{})}
	reg := prometheus.NewRegistry()
	s := NewScheduler(stepsOf(rec), nil, WithMetrics(NewMetrics(reg)))

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Trigger(context.Background(), TriggerManual)
	}()
	<-rec.entered

	_, ran := s.Trigger(context.Background(), TriggerManual)
	assert.False(t, ran)
	assert.True(t, s.Busy())

	close(rec.gate)
	<-done
	assert.Equal(t, allSteps, rec.Calls(), "only the first pass ran")
	assert.Equal(t, 1.0, counterValue(t, reg, "pilotage_recalc_busy_rejections_total"))
}

func TestTrigger_StepFailureDoesNotStopPass(t *testing.T) {
	rec := &recorder{statusErr: errors.New("database locked")}
	var observed []PassEvent
	s := NewScheduler(stepsOf(rec), nil, WithObserver(PassObserverFunc(func(_ context.Context, e PassEvent) {
		observed = append(observed, e)
	})))

	event, ran := s.Trigger(context.Background(), TriggerManual)

	require.True(t, ran)
	assert.Equal(t, allSteps, rec.Calls())
	assert.True(t, event.Failed())
	assert.Equal(t, 1, event.Skipped())
	require.Len(t, observed, 1)
	assert.Error(t, observed[0].Steps[1].Err)
}

func TestTrigger_EntitySkipsCounted(t *testing.T) {
	rec := &recorder{skipped: 3}
	reg := prometheus.NewRegistry()
	s := NewScheduler(stepsOf(rec), nil, WithMetrics(NewMetrics(reg)))

	event, _ := s.Trigger(context.Background(), TriggerManual)

	assert.Equal(t, 3, event.Skipped())
	assert.Equal(t, 3.0, counterValue(t, reg, "pilotage_recalc_entities_skipped_total"))
}

func TestTrigger_IgnoresCancellation(t *testing.T) {
	rec := &recorder{}
	s := NewScheduler(stepsOf(rec), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ran := s.Trigger(ctx, TriggerManual)

	require.True(t, ran)
	assert.Len(t, rec.Calls(), len(allSteps))
}

func TestStart_InitialThenInterval(t *testing.T) {
	rec := &recorder{}
	var passes atomic.Int32
	var first atomic.Value
	s := NewScheduler(stepsOf(rec), fastConfig(), WithObserver(PassObserverFunc(func(_ context.Context, e PassEvent) {
		if passes.Add(1) == 1 {
			first.Store(e.Trigger)
		}
	})))

	s.Start(context.Background())
	require.Eventually(t, func() bool { return passes.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	assert.Equal(t, TriggerInitial, first.Load())
	stopped := passes.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, passes.Load(), "no pass after Stop")
}

func TestStart_DoesNotBlockCaller(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Recalc.InitialDelay = time.Hour
	s := NewScheduler(stepsOf(&recorder{}), config.StaticSource(cfg))

	begin := time.Now()
	s.Start(context.Background())
	s.Stop()

	assert.Less(t, time.Since(begin), time.Second)
}

func TestLogPassObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogPassObserver(slog.New(slog.NewTextHandler(&buf, nil)))

	obs.ObservePass(context.Background(), PassEvent{Trigger: TriggerInterval, Steps: []StepOutcome{{Name: StepRisks, Updated: 4}}})

	assert.Contains(t, buf.String(), "trigger=interval")
	assert.Contains(t, buf.String(), "updated=4")
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
