package engine

import (
	"time"

	"github.com/alexanderramin/pilotage/internal/config"
	"github.com/alexanderramin/pilotage/internal/domain"
)

// DeriveActionStatus computes the status an action should carry today.
//
// Precedence: cancelled is kept, full progress means done, any other manual
// status is kept, and the remaining automatic states follow the policy.
func DeriveActionStatus(a *domain.Action, today time.Time, policy config.ActionStatusPolicy) domain.ActionStatus {
	if a.Status == domain.ActionCancelled {
		return domain.ActionCancelled
	}
	if a.Progress >= 100 {
		return domain.ActionDone
	}
	if a.Status.IsManual() {
		return a.Status
	}
	if !a.HasSchedule() {
		return domain.ActionToSchedule
	}
	if a.Progress > 0 {
		return domain.ActionInProgress
	}

	t := domain.TruncateDay(today)
	start := domain.TruncateDay(*a.PlannedStart)
	if t.Before(start) {
		if domain.DaysBetween(t, start) > policy.TodoLeadDays {
			return domain.ActionPlanned
		}
		return domain.ActionToDo
	}
	if policy.StartImpliesInProgress {
		return domain.ActionInProgress
	}
	return domain.ActionToDo
}

// IsBlockingLate reports whether a prerequisite edge holds its milestone back.
func IsBlockingLate(p domain.Prerequisite, a *domain.Action, milestonePlanned, today time.Time) bool {
	if a == nil || p.Kind == domain.LinkInformative {
		return false
	}
	if a.Status.IsClosed() || a.Progress >= 100 {
		return false
	}
	if a.Status == domain.ActionBlocked {
		return true
	}
	end := a.EffectiveEnd()
	if end == nil {
		return false
	}
	t := domain.TruncateDay(today)
	e := domain.TruncateDay(*end)
	return e.Before(t) || e.After(domain.TruncateDay(milestonePlanned))
}

// DeriveMilestoneStatus computes the status of a milestone from its projected
// date. Reached and cancelled milestones are returned unchanged.
func DeriveMilestoneStatus(m *domain.Milestone, actions map[string]*domain.Action, today time.Time, th config.Thresholds) domain.MilestoneStatus {
	if m.Status.IsTerminal() {
		return m.Status
	}

	t := domain.TruncateDay(today)
	j := domain.TruncateDay(m.ProjectedDate)
	if j.Before(t) {
		return domain.MilestoneOverdue
	}

	remaining := domain.DaysBetween(t, j)
	if remaining <= th.DangerDays && hasBlockingLate(m, actions, today) {
		return domain.MilestoneInDanger
	}
	if remaining <= th.ApproachDays {
		return domain.MilestoneApproaching
	}
	return domain.MilestoneUpcoming
}

func hasBlockingLate(m *domain.Milestone, actions map[string]*domain.Action, today time.Time) bool {
	for _, p := range m.Prerequisites {
		if IsBlockingLate(p, actions[p.ActionID], m.PlannedDate, today) {
			return true
		}
	}
	return false
}
