package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/alexanderramin/pilotage/internal/app"
	"github.com/alexanderramin/pilotage/internal/db"
	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/alexanderramin/pilotage/internal/engine"
	"github.com/alexanderramin/pilotage/internal/repository"
)

type statusService struct {
	actions    repository.ActionRepo
	milestones repository.MilestoneRepo
	uow        db.UnitOfWork
	cfg        ConfigProvider
	logger     *slog.Logger
	observer   UseCaseObserver
}

func NewStatusService(
	actions repository.ActionRepo,
	milestones repository.MilestoneRepo,
	uow db.UnitOfWork,
	cfg ConfigProvider,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) StatusService {
	return &statusService{
		actions:    actions,
		milestones: milestones,
		uow:        uow,
		cfg:        configOrDefault(cfg),
		logger:     loggerOrDiscard(logger),
		observer:   useCaseObserverOrNoop(observers),
	}
}

func (s *statusService) RecomputeActions(ctx context.Context, req app.RecomputeRequest) (res *app.RecomputeResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer observe(ctx, s.observer, "recompute-actions", startedAt, fields, &err)

	now := req.ResolveNow()
	actor := req.ResolveActor()
	policy := s.cfg.Current().ActionPolicy

	actions, err := s.actions.List(ctx, repository.ActionFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading actions: %w", err)
	}

	res = &app.RecomputeResult{}
	for _, a := range actions {
		res.Evaluated++
		next := engine.DeriveActionStatus(a, now, policy)
		if next == a.Status {
			continue
		}
		if werr := s.writeActionStatus(ctx, a, next, actor, now); werr != nil {
			s.logger.WarnContext(ctx, "skipping action status", "action_id", a.ID, "error", werr)
			res.Fail(domain.EntityAction, a.ID, werr)
			continue
		}
		a.Status = next
		res.Updated++
	}

	fields["evaluated"] = res.Evaluated
	fields["updated"] = res.Updated
	fields["skipped"] = res.Skipped
	return res, nil
}

func (s *statusService) writeActionStatus(ctx context.Context, a *domain.Action, next domain.ActionStatus, actor string, now time.Time) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteActionRepo(tx).UpdateDerived(ctx, a.ID, repository.ActionPatch{Status: &next}); err != nil {
			return err
		}
		return audit(ctx, repository.NewSQLiteAuditRepo(tx), domain.EntityAction, a.ID,
			"status", string(a.Status), string(next), actor, now)
	})
}

func (s *statusService) RecomputeMilestones(ctx context.Context, req app.RecomputeRequest) (res *app.RecomputeResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer observe(ctx, s.observer, "recompute-milestones", startedAt, fields, &err)

	now := req.ResolveNow()
	actor := req.ResolveActor()
	cfg := s.cfg.Current()
	projector := engine.NewProjector(cfg.MaxRecursionDepth, s.logger)

	actions, err := s.actions.List(ctx, repository.ActionFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading actions: %w", err)
	}
	byID := indexActions(actions)

	milestones, err := s.milestones.List(ctx, repository.MilestoneFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading milestones: %w", err)
	}

	res = &app.RecomputeResult{}
	for _, m := range milestones {
		res.Evaluated++

		projected, slip := m.ProjectedDate, m.SlipDays
		if !m.Status.IsTerminal() {
			p := projector.Project(m, byID)
			if p.Degraded {
				res.Degraded = append(res.Degraded, m.ID)
			}
			projected, slip = p.ProjectedDate, p.SlipDays
		}

		next := *m
		next.ProjectedDate = projected
		next.SlipDays = slip
		next.Status = engine.DeriveMilestoneStatus(&next, byID, now, cfg.Thresholds)

		changed, werr := s.writeMilestone(ctx, m, &next, actor, now)
		if werr != nil {
			s.logger.WarnContext(ctx, "skipping milestone", "milestone_id", m.ID, "error", werr)
			res.Fail(domain.EntityMilestone, m.ID, werr)
			continue
		}
		if changed {
			*m = next
			res.Updated++
		}
	}

	fields["evaluated"] = res.Evaluated
	fields["updated"] = res.Updated
	fields["skipped"] = res.Skipped
	fields["degraded"] = len(res.Degraded)
	return res, nil
}

// writeMilestone persists the fields of next that differ from cur, one audit
// entry per field. It reports whether anything was written.
func (s *statusService) writeMilestone(ctx context.Context, cur, next *domain.Milestone, actor string, now time.Time) (bool, error) {
	var patch repository.MilestonePatch
	var entries []domain.AuditEntry
	record := func(field, oldValue, newValue string) {
		entries = append(entries, domain.AuditEntry{Field: field, OldValue: oldValue, NewValue: newValue})
	}

	if !domain.SameDay(&cur.ProjectedDate, &next.ProjectedDate) {
		patch.ProjectedDate = &next.ProjectedDate
		record("projected_date", formatDate(&cur.ProjectedDate), formatDate(&next.ProjectedDate))
	}
	if cur.SlipDays != next.SlipDays {
		patch.SlipDays = &next.SlipDays
		record("slip_days", strconv.Itoa(cur.SlipDays), strconv.Itoa(next.SlipDays))
	}
	if cur.Status != next.Status {
		patch.Status = &next.Status
		record("status", string(cur.Status), string(next.Status))
	}
	if len(entries) == 0 {
		return false, nil
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteMilestoneRepo(tx).UpdateDerived(ctx, cur.ID, patch); err != nil {
			return err
		}
		audits := repository.NewSQLiteAuditRepo(tx)
		for _, e := range entries {
			if err := audit(ctx, audits, domain.EntityMilestone, cur.ID, e.Field, e.OldValue, e.NewValue, actor, now); err != nil {
				return err
			}
		}
		return nil
	})
	return err == nil, err
}

func (s *statusService) ProjectMilestone(ctx context.Context, milestoneID string) (*engine.Projection, error) {
	m, err := s.milestones.GetByID(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	actions, err := s.actions.List(ctx, repository.ActionFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading actions: %w", err)
	}
	p := engine.NewProjector(s.cfg.Current().MaxRecursionDepth, s.logger).Project(m, indexActions(actions))
	return &p, nil
}

func (s *statusService) ListActions(ctx context.Context) ([]*domain.Action, error) {
	return s.actions.List(ctx, repository.ActionFilter{})
}

func (s *statusService) ListMilestones(ctx context.Context) ([]*domain.Milestone, error) {
	return s.milestones.List(ctx, repository.MilestoneFilter{})
}
