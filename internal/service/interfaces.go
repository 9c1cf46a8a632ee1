package service

import (
	"context"

	"github.com/alexanderramin/pilotage/internal/app"
	"github.com/alexanderramin/pilotage/internal/config"
	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/alexanderramin/pilotage/internal/engine"
)

var (
	// ErrConfirmationRequired is returned when a delay is applied without an
	// explicit confirmation.
	ErrConfirmationRequired error = &app.DelayError{Code: app.DelayErrConfirmationRequired, Message: "delay apply requires explicit confirmation"}
	// ErrStalePreview is returned when a target changed after its preview was built.
	ErrStalePreview error = &app.DelayError{Code: app.DelayErrStalePreview, Message: "delay preview is stale"}
)

// ConfigProvider hands out the configuration in force for one use case.
type ConfigProvider interface {
	Current() config.Config
}

type StatusService interface {
	RecomputeActions(ctx context.Context, req app.RecomputeRequest) (*app.RecomputeResult, error)
	RecomputeMilestones(ctx context.Context, req app.RecomputeRequest) (*app.RecomputeResult, error)
	ProjectMilestone(ctx context.Context, milestoneID string) (*engine.Projection, error)
	ListActions(ctx context.Context) ([]*domain.Action, error)
	ListMilestones(ctx context.Context) ([]*domain.Milestone, error)
}

type DelayService interface {
	PreviewDelay(ctx context.Context, req app.DelayPreviewRequest) (*engine.DelayPreview, error)
	ApplyDelay(ctx context.Context, req app.ApplyDelayRequest) (*app.ApplyDelayResult, error)
}

type RiskService interface {
	EvaluateAllRisks(ctx context.Context, req app.RecomputeRequest) (*app.RiskEvaluation, error)
	LinkRisksToActions(ctx context.Context, req app.RiskLinkRequest) (*app.RiskLinkResult, error)
}

type PerformanceService interface {
	Analyze(ctx context.Context, req app.PerformanceRequest) (*app.PerformanceReport, error)
	RecordSnapshot(ctx context.Context, req app.RecomputeRequest) (*app.SnapshotResult, error)
}

type AlertService interface {
	RegenerateAlerts(ctx context.Context, req app.RecomputeRequest) (*app.AlertsResult, error)
	ListOpen(ctx context.Context) ([]*domain.Alert, error)
}

type BudgetService interface {
	DedupeBudgetLines(ctx context.Context, req app.RecomputeRequest) (*app.DedupeResult, error)
}
