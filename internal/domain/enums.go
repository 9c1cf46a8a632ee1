package domain

type ActionStatus string

const (
	ActionToSchedule   ActionStatus = "to_schedule"
	ActionPlanned      ActionStatus = "planned"
	ActionToDo         ActionStatus = "to_do"
	ActionInProgress   ActionStatus = "in_progress"
	ActionWaiting      ActionStatus = "waiting"
	ActionBlocked      ActionStatus = "blocked"
	ActionInValidation ActionStatus = "in_validation"
	ActionDone         ActionStatus = "done"
	ActionCancelled    ActionStatus = "cancelled"
	ActionPostponed    ActionStatus = "postponed"
)

// ValidActionStatuses is the canonical set of accepted action status strings.
var ValidActionStatuses = map[ActionStatus]bool{
	ActionToSchedule: true, ActionPlanned: true, ActionToDo: true,
	ActionInProgress: true, ActionWaiting: true, ActionBlocked: true,
	ActionInValidation: true, ActionDone: true, ActionCancelled: true,
	ActionPostponed: true,
}

// IsManual reports whether the status is only ever set by a person and is
// preserved by automatic derivation.
func (s ActionStatus) IsManual() bool {
	switch s {
	case ActionCancelled, ActionBlocked, ActionWaiting, ActionInValidation, ActionPostponed:
		return true
	}
	return false
}

// IsClosed reports whether the action no longer contributes remaining work.
func (s ActionStatus) IsClosed() bool {
	return s == ActionDone || s == ActionCancelled
}

type MilestoneStatus string

const (
	MilestoneUpcoming    MilestoneStatus = "a_venir"
	MilestoneApproaching MilestoneStatus = "en_approche"
	MilestoneInDanger    MilestoneStatus = "en_danger"
	MilestoneReached     MilestoneStatus = "atteint"
	MilestoneOverdue     MilestoneStatus = "depasse"
	MilestoneCancelled   MilestoneStatus = "annule"
)

// IsTerminal reports whether the milestone status is manual and sticky.
func (s MilestoneStatus) IsTerminal() bool {
	return s == MilestoneReached || s == MilestoneCancelled
}

// LinkKind qualifies a prerequisite edge.
type LinkKind string

const (
	LinkBlocking    LinkKind = "blocking"
	LinkInformative LinkKind = "informative"
)

type SyncLinkKind string

const (
	SyncFinishToStart SyncLinkKind = "finish_to_start"
	SyncStartToStart  SyncLinkKind = "start_to_start"
	SyncMirror        SyncLinkKind = "mirror"
)

type RiskStatus string

const (
	RiskOpen   RiskStatus = "open"
	RiskClosed RiskStatus = "closed"
)

type RiskLevel string

const (
	RiskModerate RiskLevel = "modere"
	RiskMajor    RiskLevel = "majeur"
	RiskCritical RiskLevel = "critique"
)

type PerformanceLevel string

const (
	PerfAhead   PerformanceLevel = "ahead"
	PerfOnTrack PerformanceLevel = "on_track"
	PerfBehind  PerformanceLevel = "behind"
	PerfUnknown PerformanceLevel = "unknown"
)

type SyncClass string

const (
	SyncInPhase  SyncClass = "en_phase"
	SyncAhead    SyncClass = "en_avance"
	SyncBehind   SyncClass = "en_retard"
	SyncCritical SyncClass = "critique"
)

type SyncTrend string

const (
	TrendImproving SyncTrend = "improving"
	TrendStable    SyncTrend = "stable"
	TrendDegrading SyncTrend = "degrading"
)

type AlertCondition string

const (
	AlertMilestoneOverdue AlertCondition = "milestone_overdue"
	AlertMilestoneDanger  AlertCondition = "milestone_in_danger"
	AlertActionLate       AlertCondition = "action_late"
	AlertActionBlocked    AlertCondition = "action_blocked"
	AlertRiskCritical     AlertCondition = "risk_critical"
	AlertSyncCritical     AlertCondition = "sync_critical"
)

type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// EntityType names the record kinds referenced by audit entries and alerts.
type EntityType string

const (
	EntityAction    EntityType = "action"
	EntityMilestone EntityType = "milestone"
	EntityRisk      EntityType = "risk"
	EntityBudget    EntityType = "budget_line"
	EntityPortfolio EntityType = "portfolio"
)
