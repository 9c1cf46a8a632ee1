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

type riskService struct {
	risks    repository.RiskRepo
	links    repository.RiskLinkRepo
	actions  repository.ActionRepo
	uow      db.UnitOfWork
	cfg      ConfigProvider
	logger   *slog.Logger
	observer UseCaseObserver
}

func NewRiskService(
	risks repository.RiskRepo,
	links repository.RiskLinkRepo,
	actions repository.ActionRepo,
	uow db.UnitOfWork,
	cfg ConfigProvider,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) RiskService {
	return &riskService{
		risks:    risks,
		links:    links,
		actions:  actions,
		uow:      uow,
		cfg:      configOrDefault(cfg),
		logger:   loggerOrDiscard(logger),
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *riskService) EvaluateAllRisks(ctx context.Context, req app.RecomputeRequest) (res *app.RiskEvaluation, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer observe(ctx, s.observer, "evaluate-risks", startedAt, fields, &err)

	now := req.ResolveNow()
	actor := req.ResolveActor()

	risks, err := s.risks.List(ctx, repository.RiskFilter{ExcludeClosed: true})
	if err != nil {
		return nil, fmt.Errorf("loading risks: %w", err)
	}

	res = &app.RiskEvaluation{}
	for _, r := range risks {
		res.Evaluated++
		score := engine.ComputeRiskScore(r.Probability, r.Impact)
		if score == r.Score {
			continue
		}
		werr := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			if err := repository.NewSQLiteRiskRepo(tx).UpdateScore(ctx, r.ID, score); err != nil {
				return err
			}
			return audit(ctx, repository.NewSQLiteAuditRepo(tx), domain.EntityRisk, r.ID,
				"score", strconv.Itoa(r.Score), strconv.Itoa(score), actor, now)
		})
		if werr != nil {
			s.logger.WarnContext(ctx, "skipping risk score", "risk_id", r.ID, "error", werr)
			res.Skipped++
			continue
		}
		r.Score = score
		res.Updated++
	}

	fields["evaluated"] = res.Evaluated
	fields["updated"] = res.Updated
	fields["skipped"] = res.Skipped
	return res, nil
}

func (s *riskService) LinkRisksToActions(ctx context.Context, req app.RiskLinkRequest) (res *app.RiskLinkResult, err error) {
	startedAt := time.Now()
	persist := req.Persist || s.cfg.Current().Risk.PersistLinks
	fields := map[string]any{"persist": persist}
	defer observe(ctx, s.observer, "link-risks", startedAt, fields, &err)

	risks, err := s.risks.List(ctx, repository.RiskFilter{ExcludeClosed: true})
	if err != nil {
		return nil, fmt.Errorf("loading risks: %w", err)
	}
	actions, err := s.actions.List(ctx, repository.ActionFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading actions: %w", err)
	}

	matches := engine.MatchRiskActions(risks, actions)
	res = &app.RiskLinkResult{Links: matches, RisksLinked: len(matches)}
	for _, ids := range matches {
		res.TotalLinks += len(ids)
	}
	fields["risks_linked"] = res.RisksLinked
	fields["total_links"] = res.TotalLinks

	if !persist {
		return res, nil
	}
	if err := s.reconcileLinks(ctx, matches, res); err != nil {
		return nil, err
	}
	res.Persisted = true
	fields["inserted"] = res.Inserted
	fields["removed"] = res.Removed
	return res, nil
}

// reconcileLinks makes the stored automatic links equal to matches. Manual
// links are never inserted over nor removed.
func (s *riskService) reconcileLinks(ctx context.Context, matches map[string][]string, res *app.RiskLinkResult) error {
	type pair struct{ risk, action string }

	existing, err := s.links.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("loading risk links: %w", err)
	}
	stored := make(map[pair]string, len(existing))
	for _, l := range existing {
		stored[pair{l.RiskID, l.ActionID}] = l.Source
	}

	wanted := make(map[pair]bool)
	for riskID, ids := range matches {
		for _, actionID := range ids {
			wanted[pair{riskID, actionID}] = true
		}
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		links := repository.NewSQLiteRiskLinkRepo(tx)
		for p := range wanted {
			if _, ok := stored[p]; ok {
				continue
			}
			if err := links.Upsert(ctx, domain.RiskActionLink{RiskID: p.risk, ActionID: p.action, Source: domain.LinkSourceAuto}); err != nil {
				return fmt.Errorf("linking risk %s: %w", p.risk, err)
			}
			res.Inserted++
		}
		for p, source := range stored {
			if source != domain.LinkSourceAuto || wanted[p] {
				continue
			}
			if err := links.Delete(ctx, p.risk, p.action); err != nil {
				return fmt.Errorf("unlinking risk %s: %w", p.risk, err)
			}
			res.Removed++
		}
		return nil
	})
}
