package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/pilotage/internal/app"
	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/alexanderramin/pilotage/internal/engine"
	"github.com/alexanderramin/pilotage/internal/repository"
)

type alertService struct {
	actions    repository.ActionRepo
	milestones repository.MilestoneRepo
	risks      repository.RiskRepo
	alerts     repository.AlertRepo
	cfg        ConfigProvider
	logger     *slog.Logger
	observer   UseCaseObserver
}

func NewAlertService(
	actions repository.ActionRepo,
	milestones repository.MilestoneRepo,
	risks repository.RiskRepo,
	alerts repository.AlertRepo,
	cfg ConfigProvider,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) AlertService {
	return &alertService{
		actions:    actions,
		milestones: milestones,
		risks:      risks,
		alerts:     alerts,
		cfg:        configOrDefault(cfg),
		logger:     loggerOrDiscard(logger),
		observer:   useCaseObserverOrNoop(observers),
	}
}

// RegenerateAlerts raises an alert for every active condition not already
// open and resolves open alerts whose condition cleared.
func (s *alertService) RegenerateAlerts(ctx context.Context, req app.RecomputeRequest) (res *app.AlertsResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer observe(ctx, s.observer, "regenerate-alerts", startedAt, fields, &err)

	now := req.ResolveNow()
	cfg := s.cfg.Current()

	actions, err := s.actions.List(ctx, repository.ActionFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading actions: %w", err)
	}
	milestones, err := s.milestones.List(ctx, repository.MilestoneFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading milestones: %w", err)
	}
	risks, err := s.risks.List(ctx, repository.RiskFilter{ExcludeClosed: true})
	if err != nil {
		return nil, fmt.Errorf("loading risks: %w", err)
	}
	gap := engine.ComputeSyncGap(actions, cfg.Sync)

	active := engine.DetectAlerts(engine.AlertInput{
		Actions:    actions,
		Milestones: milestones,
		Risks:      risks,
		Gap:        &gap,
		Today:      now,
		RiskBands:  cfg.Risk,
	})

	res = &app.AlertsResult{}
	for _, a := range active {
		a.CreatedAt = now
		created, uerr := s.alerts.Upsert(ctx, a)
		if uerr != nil {
			s.logger.WarnContext(ctx, "skipping alert", "entity_id", a.EntityID, "condition", a.Condition, "error", uerr)
			res.Skipped++
			continue
		}
		if created {
			res.Raised++
		} else {
			res.Existing++
		}
	}

	open, err := s.alerts.ListUnresolved(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading open alerts: %w", err)
	}
	for _, a := range engine.StaleAlerts(open, active) {
		if rerr := s.alerts.Resolve(ctx, a.ID, now); rerr != nil {
			s.logger.WarnContext(ctx, "resolving alert", "alert_id", a.ID, "error", rerr)
			res.Skipped++
			continue
		}
		res.Resolved++
	}

	fields["raised"] = res.Raised
	fields["resolved"] = res.Resolved
	fields["skipped"] = res.Skipped
	return res, nil
}

func (s *alertService) ListOpen(ctx context.Context) ([]*domain.Alert, error) {
	return s.alerts.ListUnresolved(ctx)
}
