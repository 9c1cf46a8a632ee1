package app

import "context"

// The recalculation pass depends on these narrow use cases rather than on
// the full service interfaces.

type BudgetDedupeUseCase interface {
	DedupeBudgetLines(ctx context.Context, req RecomputeRequest) (*DedupeResult, error)
}

type StatusRecomputeUseCase interface {
	RecomputeActions(ctx context.Context, req RecomputeRequest) (*RecomputeResult, error)
	RecomputeMilestones(ctx context.Context, req RecomputeRequest) (*RecomputeResult, error)
}

type AlertRegenerateUseCase interface {
	RegenerateAlerts(ctx context.Context, req RecomputeRequest) (*AlertsResult, error)
}

type RiskEvaluateUseCase interface {
	EvaluateAllRisks(ctx context.Context, req RecomputeRequest) (*RiskEvaluation, error)
}

type SnapshotUseCase interface {
	RecordSnapshot(ctx context.Context, req RecomputeRequest) (*SnapshotResult, error)
}
