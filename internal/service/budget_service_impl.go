package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/pilotage/internal/app"
	"github.com/alexanderramin/pilotage/internal/db"
	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/alexanderramin/pilotage/internal/engine"
	"github.com/alexanderramin/pilotage/internal/repository"
)

type budgetService struct {
	budget   repository.BudgetRepo
	uow      db.UnitOfWork
	logger   *slog.Logger
	observer UseCaseObserver
}

func NewBudgetService(budget repository.BudgetRepo, uow db.UnitOfWork, logger *slog.Logger, observers ...UseCaseObserver) BudgetService {
	return &budgetService{
		budget:   budget,
		uow:      uow,
		logger:   loggerOrDiscard(logger),
		observer: useCaseObserverOrNoop(observers),
	}
}

// DedupeBudgetLines removes exact duplicate rows, keeping the oldest of each
// group. Every removal is audited with the row key as its old value.
func (s *budgetService) DedupeBudgetLines(ctx context.Context, req app.RecomputeRequest) (res *app.DedupeResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer observe(ctx, s.observer, "dedupe-budget", startedAt, fields, &err)

	now := req.ResolveNow()
	actor := req.ResolveActor()

	lines, err := s.budget.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading budget lines: %w", err)
	}

	res = &app.DedupeResult{}
	for _, dup := range engine.DuplicateBudgetLines(lines) {
		derr := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			if err := repository.NewSQLiteBudgetRepo(tx).Delete(ctx, dup.ID); err != nil {
				return err
			}
			return audit(ctx, repository.NewSQLiteAuditRepo(tx), domain.EntityBudget, dup.ID,
				"row", dup.DedupeKey(), "", actor, now)
		})
		if derr != nil {
			s.logger.WarnContext(ctx, "skipping duplicate budget line", "budget_line_id", dup.ID, "error", derr)
			res.Skipped++
			continue
		}
		res.Removed++
		res.RemovedIDs = append(res.RemovedIDs, dup.ID)
	}

	fields["removed"] = res.Removed
	return res, nil
}
