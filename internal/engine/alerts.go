package engine

import (
	"fmt"
	"time"

	"github.com/alexanderramin/pilotage/internal/config"
	"github.com/alexanderramin/pilotage/internal/domain"
)

// PortfolioEntityID is the entity id of portfolio-level alerts.
const PortfolioEntityID = "portfolio"

// AlertInput is the state automatic alert detection runs over.
type AlertInput struct {
	Actions    []*domain.Action
	Milestones []*domain.Milestone
	Risks      []*domain.Risk
	// Gap is optional; without it no sync alert is raised.
	Gap       *SyncGap
	Today     time.Time
	RiskBands config.RiskBands
}

// AlertKey identifies an alert independently of its lifecycle.
type AlertKey struct {
	EntityType domain.EntityType
	EntityID   string
	Condition  domain.AlertCondition
}

// KeyOf returns the dedupe key of an alert.
func KeyOf(a *domain.Alert) AlertKey {
	return AlertKey{EntityType: a.EntityType, EntityID: a.EntityID, Condition: a.Condition}
}

// DetectAlerts returns one candidate alert per entity and active condition.
func DetectAlerts(in AlertInput) []*domain.Alert {
	today := domain.TruncateDay(in.Today)
	var out []*domain.Alert
	add := func(et domain.EntityType, id string, c domain.AlertCondition, sev domain.AlertSeverity, msg string) {
		out = append(out, &domain.Alert{
			EntityType: et, EntityID: id, Condition: c, Severity: sev, Message: msg,
		})
	}

	for _, m := range in.Milestones {
		switch m.Status {
		case domain.MilestoneOverdue:
			add(domain.EntityMilestone, m.ID, domain.AlertMilestoneOverdue, domain.SeverityCritical,
				fmt.Sprintf("milestone %q overdue, projected %s", m.Title, m.ProjectedDate.Format("2006-01-02")))
		case domain.MilestoneInDanger:
			add(domain.EntityMilestone, m.ID, domain.AlertMilestoneDanger, domain.SeverityWarning,
				fmt.Sprintf("milestone %q in danger, slip %d days", m.Title, m.SlipDays))
		}
	}

	for _, a := range in.Actions {
		if a.Status.IsClosed() {
			continue
		}
		if a.Status == domain.ActionBlocked {
			add(domain.EntityAction, a.ID, domain.AlertActionBlocked, domain.SeverityWarning,
				fmt.Sprintf("action %q is blocked", a.Title))
		}
		if a.PlannedEnd != nil && domain.TruncateDay(*a.PlannedEnd).Before(today) {
			add(domain.EntityAction, a.ID, domain.AlertActionLate, domain.SeverityWarning,
				fmt.Sprintf("action %q late by %d days", a.Title, domain.DaysBetween(*a.PlannedEnd, today)))
		}
	}

	for _, r := range in.Risks {
		if r.Status == domain.RiskClosed {
			continue
		}
		// Scored from the inputs: the stored score may not be refreshed yet.
		score := ComputeRiskScore(r.Probability, r.Impact)
		if ClassifyRisk(score, in.RiskBands) == domain.RiskCritical {
			add(domain.EntityRisk, r.ID, domain.AlertRiskCritical, domain.SeverityCritical,
				fmt.Sprintf("risk %q is critical (score %d)", r.Title, score))
		}
	}

	if in.Gap != nil && in.Gap.Class == domain.SyncCritical {
		add(domain.EntityPortfolio, PortfolioEntityID, domain.AlertSyncCritical, domain.SeverityCritical,
			fmt.Sprintf("sync gap %.1f points between tracks", in.Gap.Gap))
	}
	return out
}

// StaleAlerts returns the open alerts whose condition no longer holds.
func StaleAlerts(open []*domain.Alert, active []*domain.Alert) []*domain.Alert {
	still := make(map[AlertKey]bool, len(active))
	for _, a := range active {
		still[KeyOf(a)] = true
	}
	var stale []*domain.Alert
	for _, a := range open {
		if !still[KeyOf(a)] {
			stale = append(stale, a)
		}
	}
	return stale
}
