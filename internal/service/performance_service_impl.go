package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/pilotage/internal/app"
	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/alexanderramin/pilotage/internal/engine"
	"github.com/alexanderramin/pilotage/internal/repository"
	"github.com/google/uuid"
)

type performanceService struct {
	actions   repository.ActionRepo
	budget    repository.BudgetRepo
	snapshots repository.SnapshotRepo
	cfg       ConfigProvider
	observer  UseCaseObserver
}

func NewPerformanceService(
	actions repository.ActionRepo,
	budget repository.BudgetRepo,
	snapshots repository.SnapshotRepo,
	cfg ConfigProvider,
	observers ...UseCaseObserver,
) PerformanceService {
	return &performanceService{
		actions:   actions,
		budget:    budget,
		snapshots: snapshots,
		cfg:       configOrDefault(cfg),
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *performanceService) Analyze(ctx context.Context, req app.PerformanceRequest) (report *app.PerformanceReport, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer observe(ctx, s.observer, "analyze-performance", startedAt, fields, &err)

	now := time.Now().UTC()
	if req.Now != nil {
		now = req.Now.UTC()
	}
	cfg := s.cfg.Current()

	actions, err := s.actions.List(ctx, repository.ActionFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading actions: %w", err)
	}
	lines, err := s.budget.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading budget lines: %w", err)
	}

	ev := engine.ComputeEarnedValue(engine.EVInput{Lines: lines, Actions: actions, Today: now})
	gap := engine.ComputeSyncGap(actions, cfg.Sync)

	baseline, err := s.snapshots.LatestOnOrBefore(ctx, engine.BaselineCutoff(now, cfg.Sync.BaselineDays))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("loading sync baseline: %w", err)
		}
		baseline = nil
	}

	report = &app.PerformanceReport{
		GeneratedAt:  now,
		EarnedValue:  ev,
		SPILevel:     engine.ClassifyIndex(ev.SPI, cfg.Performance),
		CPILevel:     engine.ClassifyIndex(ev.CPI, cfg.Performance),
		AxisProgress: engine.AxisProgress(actions),
		Sync:         gap,
		Trend:        engine.ComputeTrend(gap.Gap, baseline, cfg.Sync.TrendNoise),
	}
	fields["sync_class"] = string(gap.Class)
	fields["spi"] = string(report.SPILevel)
	fields["cpi"] = string(report.CPILevel)
	return report, nil
}

// RecordSnapshot stores today's synchronization gap. A second call on the
// same calendar day leaves the first snapshot in place.
func (s *performanceService) RecordSnapshot(ctx context.Context, req app.RecomputeRequest) (res *app.SnapshotResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer observe(ctx, s.observer, "record-snapshot", startedAt, fields, &err)

	actions, err := s.actions.List(ctx, repository.ActionFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading actions: %w", err)
	}
	gap := engine.ComputeSyncGap(actions, s.cfg.Current().Sync)

	snap := domain.SyncSnapshot{
		ID:              uuid.New().String(),
		TakenAt:         req.ResolveNow(),
		TechnicalPct:    gap.TechnicalPct,
		MobilizationPct: gap.MobilizationPct,
		Gap:             gap.Gap,
	}
	recorded, err := s.snapshots.Record(ctx, &snap)
	if err != nil {
		return nil, fmt.Errorf("recording snapshot: %w", err)
	}
	fields["recorded"] = recorded
	return &app.SnapshotResult{Recorded: recorded, Snapshot: snap}, nil
}
