package recalc

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/pilotage/internal/app"
	"github.com/alexanderramin/pilotage/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("pilotage.recalc")

// Steps are the use cases a full pass runs, in order.
type Steps struct {
	Budget   app.BudgetDedupeUseCase
	Status   app.StatusRecomputeUseCase
	Alerts   app.AlertRegenerateUseCase
	Risks    app.RiskEvaluateUseCase
	Snapshot app.SnapshotUseCase
}

// ConfigProvider hands out the configuration in force when a pass starts.
type ConfigProvider interface {
	Current() config.Config
}

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// WithClock overrides the time passed to every step.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func WithObserver(o PassObserver) Option {
	return func(s *Scheduler) { s.observers = append(s.observers, o) }
}

// Scheduler runs full recalculation passes on a timer and on demand. At most
// one pass runs at a time; a trigger arriving while a pass runs is dropped.
type Scheduler struct {
	steps     Steps
	cfg       ConfigProvider
	logger    *slog.Logger
	metrics   *Metrics
	now       func() time.Time
	observers []PassObserver

	busy atomic.Bool

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func NewScheduler(steps Steps, cfg ConfigProvider, opts ...Option) *Scheduler {
	s := &Scheduler{
		steps:  steps,
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
		now:    func() time.Time { return time.Now().UTC() },
	}
	if s.cfg == nil {
		s.cfg = config.StaticSource(config.DefaultConfig())
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the timer loop and returns immediately. The first pass runs
// after the configured initial delay, then one per interval.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	go s.loop(loopCtx, s.done)
}

// Stop ends the timer loop and waits for it to exit. A pass already running
// completes first.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	rc := s.cfg.Current().Recalc
	timer := time.NewTimer(rc.InitialDelay)
	defer timer.Stop()

	trigger := TriggerInitial
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		s.Trigger(ctx, trigger)
		trigger = TriggerInterval
		// interval is re-read so a config reload takes effect on the next tick
		timer.Reset(s.cfg.Current().Recalc.Interval)
	}
}

// Trigger runs a full pass synchronously. It reports false without running
// when another pass is in flight. The pass ignores cancellation of ctx.
func (s *Scheduler) Trigger(ctx context.Context, trigger Trigger) (PassEvent, bool) {
	if !s.busy.CompareAndSwap(false, true) {
		s.metrics.IncrementBusy()
		s.logger.InfoContext(ctx, "recalc pass already running, trigger ignored", "trigger", string(trigger))
		return PassEvent{}, false
	}
	defer s.busy.Store(false)

	event := s.runPass(context.WithoutCancel(ctx), trigger)
	s.metrics.ObservePass(event)
	for _, o := range s.observers {
		o.ObservePass(ctx, event)
	}
	return event, true
}

// Busy reports whether a pass is running.
func (s *Scheduler) Busy() bool {
	return s.busy.Load()
}

func (s *Scheduler) runPass(ctx context.Context, trigger Trigger) PassEvent {
	ctx, span := tracer.Start(ctx, "recalc.Pass",
		trace.WithAttributes(attribute.String("recalc.trigger", string(trigger))))
	defer span.End()

	now := s.now()
	req := app.RecomputeRequest{Now: &now}
	event := PassEvent{Trigger: trigger, StartedAt: now}
	started := time.Now()

	event.Steps = append(event.Steps,
		s.step(ctx, StepBudgetDedupe, func(ctx context.Context) (int, int, error) {
			res, err := s.steps.Budget.DedupeBudgetLines(ctx, req)
			if err != nil {
				return 0, 0, err
			}
			return res.Removed, res.Skipped, nil
		}),
		s.step(ctx, StepActions, func(ctx context.Context) (int, int, error) {
			res, err := s.steps.Status.RecomputeActions(ctx, req)
			if err != nil {
				return 0, 0, err
			}
			return res.Updated, res.Skipped, nil
		}),
		s.step(ctx, StepMilestones, func(ctx context.Context) (int, int, error) {
			res, err := s.steps.Status.RecomputeMilestones(ctx, req)
			if err != nil {
				return 0, 0, err
			}
			return res.Updated, res.Skipped, nil
		}),
		s.step(ctx, StepAlerts, func(ctx context.Context) (int, int, error) {
			res, err := s.steps.Alerts.RegenerateAlerts(ctx, req)
			if err != nil {
				return 0, 0, err
			}
			return res.Raised + res.Resolved, res.Skipped, nil
		}),
		s.step(ctx, StepRisks, func(ctx context.Context) (int, int, error) {
			res, err := s.steps.Risks.EvaluateAllRisks(ctx, req)
			if err != nil {
				return 0, 0, err
			}
			return res.Updated, res.Skipped, nil
		}),
		s.step(ctx, StepSnapshot, func(ctx context.Context) (int, int, error) {
			res, err := s.steps.Snapshot.RecordSnapshot(ctx, req)
			if err != nil {
				return 0, 0, err
			}
			if res.Recorded {
				return 1, 0, nil
			}
			return 0, 0, nil
		}),
	)
	event.Duration = time.Since(started)

	span.SetAttributes(
		attribute.Int("recalc.updated", event.Updated()),
		attribute.Int("recalc.skipped", event.Skipped()),
	)
	if event.Failed() {
		span.SetStatus(codes.Error, "pass completed with skipped entities")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return event
}

// step runs one stage. A failing stage is logged and recorded, and the pass
// moves on to the next stage.
func (s *Scheduler) step(ctx context.Context, name string, fn func(ctx context.Context) (int, int, error)) StepOutcome {
	ctx, span := tracer.Start(ctx, "recalc."+name)
	defer span.End()

	started := time.Now()
	updated, skipped, err := fn(ctx)
	out := StepOutcome{Name: name, Updated: updated, Skipped: skipped, Duration: time.Since(started), Err: err}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, "recalc step failed", "step", name, "error", err)
		return out
	}
	span.SetAttributes(attribute.Int("updated", updated), attribute.Int("skipped", skipped))
	span.SetStatus(codes.Ok, "")
	return out
}
