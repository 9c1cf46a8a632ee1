package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/pilotage/internal/app"
	"github.com/alexanderramin/pilotage/internal/config"
	"github.com/alexanderramin/pilotage/internal/db"
	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/alexanderramin/pilotage/internal/engine"
	"github.com/alexanderramin/pilotage/internal/repository"
)

type delayService struct {
	actions  repository.ActionRepo
	links    repository.SyncLinkRepo
	uow      db.UnitOfWork
	cfg      ConfigProvider
	logger   *slog.Logger
	observer UseCaseObserver
}

func NewDelayService(
	actions repository.ActionRepo,
	links repository.SyncLinkRepo,
	uow db.UnitOfWork,
	cfg ConfigProvider,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) DelayService {
	return &delayService{
		actions:  actions,
		links:    links,
		uow:      uow,
		cfg:      configOrDefault(cfg),
		logger:   loggerOrDiscard(logger),
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *delayService) PreviewDelay(ctx context.Context, req app.DelayPreviewRequest) (preview *engine.DelayPreview, err error) {
	startedAt := time.Now()
	fields := map[string]any{"source_action_id": req.SourceActionID}
	defer observe(ctx, s.observer, "preview-delay", startedAt, fields, &err)

	now := time.Now().UTC()
	if req.Now != nil {
		now = req.Now.UTC()
	}

	source, err := s.actions.GetByID(ctx, req.SourceActionID)
	if err != nil {
		return nil, fmt.Errorf("loading source action: %w", err)
	}

	links, err := s.links.ListBySource(ctx, source.ID)
	if err != nil {
		return nil, fmt.Errorf("loading sync links: %w", err)
	}

	targets := map[string]*domain.Action{}
	if ids := engine.TargetIDs(links); len(ids) > 0 {
		found, err := s.actions.List(ctx, repository.ActionFilter{IDs: ids})
		if err != nil {
			return nil, fmt.Errorf("loading targets: %w", err)
		}
		targets = indexActions(found)
	}

	preview, err = engine.BuildDelayPreview(source, links, targets, now)
	if err != nil {
		return nil, err
	}
	fields["retard_jours"] = preview.RetardJours
	fields["impacted"] = len(preview.ImpactedActions)
	return preview, nil
}

func (s *delayService) ApplyDelay(ctx context.Context, req app.ApplyDelayRequest) (res *app.ApplyDelayResult, err error) {
	startedAt := time.Now()
	mode := s.cfg.Current().Delay.ApplyMode
	fields := map[string]any{"mode": string(mode)}
	defer observe(ctx, s.observer, "apply-delay", startedAt, fields, &err)

	if !req.Confirmation.Confirmed {
		return nil, ErrConfirmationRequired
	}
	res = &app.ApplyDelayResult{Mode: mode}
	if req.Preview.IsEmpty() {
		return res, nil
	}
	fields["source_action_id"] = req.Preview.SourceID

	now := time.Now().UTC()
	if req.Now != nil {
		now = req.Now.UTC()
	}
	actor := req.Confirmation.Actor
	if actor == "" {
		actor = domain.SystemActor
	}

	if mode == config.DelaySequential {
		err = s.applySequential(ctx, req.Preview, actor, now, res)
	} else {
		err = s.applyTransactional(ctx, req.Preview, actor, now, res)
	}
	fields["applied"] = res.AppliedCount
	fields["failed"] = len(res.FailedIDs)
	return res, err
}

// applyTransactional writes every shift and its audit entry in one unit of
// work. Any failure rolls everything back.
func (s *delayService) applyTransactional(ctx context.Context, preview *engine.DelayPreview, actor string, now time.Time, res *app.ApplyDelayResult) error {
	targets := shiftable(preview.ImpactedActions)
	if len(targets) == 0 {
		return nil
	}
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		actions := repository.NewSQLiteActionRepo(tx)
		if err := verifyTargets(ctx, actions, targets); err != nil {
			return err
		}

		shifts := make([]repository.DateShift, 0, len(targets))
		for _, imp := range targets {
			shifts = append(shifts, repository.DateShift{ActionID: imp.ID, PlannedStart: imp.NewStart, PlannedEnd: imp.NewEnd})
		}
		if err := actions.BulkUpdateDates(ctx, shifts); err != nil {
			return err
		}

		audits := repository.NewSQLiteAuditRepo(tx)
		for _, imp := range targets {
			if err := auditShift(ctx, audits, imp, actor, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		for _, imp := range targets {
			res.FailedIDs = append(res.FailedIDs, imp.ID)
		}
		return fmt.Errorf("applying delay from %s: %w", preview.SourceID, err)
	}
	res.AppliedCount = len(targets)
	return nil
}

// applySequential writes each target in its own transaction. Earlier writes
// survive a later failure.
func (s *delayService) applySequential(ctx context.Context, preview *engine.DelayPreview, actor string, now time.Time, res *app.ApplyDelayResult) error {
	targets := shiftable(preview.ImpactedActions)
	if len(targets) == 0 {
		return nil
	}
	if err := verifyTargets(ctx, s.actions, targets); err != nil {
		return fmt.Errorf("applying delay from %s: %w", preview.SourceID, err)
	}

	for _, imp := range targets {
		err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			shift := repository.DateShift{ActionID: imp.ID, PlannedStart: imp.NewStart, PlannedEnd: imp.NewEnd}
			if err := repository.NewSQLiteActionRepo(tx).BulkUpdateDates(ctx, []repository.DateShift{shift}); err != nil {
				return err
			}
			return auditShift(ctx, repository.NewSQLiteAuditRepo(tx), imp, actor, now)
		})
		if err != nil {
			s.logger.WarnContext(ctx, "delay shift failed", "action_id", imp.ID, "error", err)
			res.FailedIDs = append(res.FailedIDs, imp.ID)
			continue
		}
		res.AppliedCount++
	}
	return nil
}

// verifyTargets re-reads every impacted action. A missing target yields
// ErrNotFound and a target whose dates moved since the preview yields
// ErrStalePreview.
// shiftable drops entries with no planned dates, which a shift cannot change.
func shiftable(impacted []engine.ImpactedAction) []engine.ImpactedAction {
	out := make([]engine.ImpactedAction, 0, len(impacted))
	for _, imp := range impacted {
		if imp.NewStart == nil && imp.NewEnd == nil {
			continue
		}
		out = append(out, imp)
	}
	return out
}

func verifyTargets(ctx context.Context, actions repository.ActionRepo, impacted []engine.ImpactedAction) error {
	ids := make([]string, 0, len(impacted))
	for _, imp := range impacted {
		ids = append(ids, imp.ID)
	}
	current, err := actions.List(ctx, repository.ActionFilter{IDs: ids})
	if err != nil {
		return fmt.Errorf("reloading targets: %w", err)
	}
	byID := indexActions(current)

	for _, imp := range impacted {
		cur, ok := byID[imp.ID]
		if !ok {
			return fmt.Errorf("target %s: %w", imp.ID, domain.ErrNotFound)
		}
		if !domain.SameDay(cur.PlannedStart, imp.OldStart) || !domain.SameDay(cur.PlannedEnd, imp.OldEnd) {
			return fmt.Errorf("target %s: %w", imp.ID, ErrStalePreview)
		}
	}
	return nil
}

func auditShift(ctx context.Context, audits repository.AuditRepo, imp engine.ImpactedAction, actor string, now time.Time) error {
	return audit(ctx, audits, domain.EntityAction, imp.ID, "planned_dates",
		formatSpan(imp.OldStart, imp.OldEnd), formatSpan(imp.NewStart, imp.NewEnd), actor, now)
}
