package recalc

import (
	"context"
	"log/slog"
	"time"
)

// Trigger names what started a pass.
type Trigger string

const (
	TriggerInitial  Trigger = "initial"
	TriggerInterval Trigger = "interval"
	TriggerManual   Trigger = "manual"
)

// Step names, in execution order.
const (
	StepBudgetDedupe = "budget_dedupe"
	StepActions      = "action_status"
	StepMilestones   = "milestones"
	StepAlerts       = "alerts"
	StepRisks        = "risk_scores"
	StepSnapshot     = "sync_snapshot"
)

// StepOutcome reports one step of a pass.
type StepOutcome struct {
	Name     string
	Updated  int
	Skipped  int
	Duration time.Duration
	// Err is set when the step as a whole could not run.
	Err error
}

// PassEvent is emitted to observers after every completed pass.
type PassEvent struct {
	Trigger   Trigger
	StartedAt time.Time
	Duration  time.Duration
	Steps     []StepOutcome
}

// Skipped totals the skipped entities and failed steps of the pass.
func (e PassEvent) Skipped() int {
	n := 0
	for _, s := range e.Steps {
		n += s.Skipped
		if s.Err != nil {
			n++
		}
	}
	return n
}

// Updated totals the entities written by the pass.
func (e PassEvent) Updated() int {
	n := 0
	for _, s := range e.Steps {
		n += s.Updated
	}
	return n
}

// Failed reports whether anything in the pass was skipped.
func (e PassEvent) Failed() bool {
	return e.Skipped() > 0
}

// PassObserver receives pass events.
type PassObserver interface {
	ObservePass(ctx context.Context, event PassEvent)
}

// PassObserverFunc adapts a function to PassObserver.
type PassObserverFunc func(ctx context.Context, event PassEvent)

func (f PassObserverFunc) ObservePass(ctx context.Context, event PassEvent) { f(ctx, event) }

type logPassObserver struct {
	logger *slog.Logger
}

// NewLogPassObserver logs a summary line per pass.
func NewLogPassObserver(logger *slog.Logger) PassObserver {
	return &logPassObserver{logger: logger}
}

func (o *logPassObserver) ObservePass(ctx context.Context, e PassEvent) {
	attrs := []any{
		"trigger", string(e.Trigger),
		"duration_ms", e.Duration.Milliseconds(),
		"updated", e.Updated(),
		"skipped", e.Skipped(),
	}
	if e.Failed() {
		o.logger.WarnContext(ctx, "recalc_pass", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "recalc_pass", attrs...)
}
