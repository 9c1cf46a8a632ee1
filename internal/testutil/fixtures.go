package testutil

import (
	"time"

	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/google/uuid"
)

// Action options
type ActionOption func(*domain.Action)

func WithAxis(axis string) ActionOption {
	return func(a *domain.Action) {
		a.Axis = axis
	}
}

func WithBuilding(code string) ActionOption {
	return func(a *domain.Action) {
		a.BuildingCode = code
	}
}

func WithPlanned(start, end time.Time) ActionOption {
	return func(a *domain.Action) {
		a.PlannedStart = &start
		a.PlannedEnd = &end
	}
}

func WithActualEnd(d time.Time) ActionOption {
	return func(a *domain.Action) {
		a.ActualEnd = &d
	}
}

func WithProgress(p int) ActionOption {
	return func(a *domain.Action) {
		a.Progress = p
	}
}

func WithActionStatus(s domain.ActionStatus) ActionOption {
	return func(a *domain.Action) {
		a.Status = s
	}
}

func WithPrereq(actionID string, kind domain.LinkKind) ActionOption {
	return func(a *domain.Action) {
		a.Prerequisites = append(a.Prerequisites, domain.Prerequisite{ActionID: actionID, Kind: kind})
	}
}

func WithMilestone(id string) ActionOption {
	return func(a *domain.Action) {
		a.MilestoneID = &id
	}
}

func NewTestAction(title string, opts ...ActionOption) *domain.Action {
	now := time.Now().UTC()
	a := &domain.Action{
		ID:        uuid.New().String(),
		Title:     title,
		Axis:      "technique",
		Status:    domain.ActionToSchedule,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Milestone options
type MilestoneOption func(*domain.Milestone)

func WithMilestoneStatus(s domain.MilestoneStatus) MilestoneOption {
	return func(m *domain.Milestone) {
		m.Status = s
	}
}

func WithProjected(d time.Time) MilestoneOption {
	return func(m *domain.Milestone) {
		m.ProjectedDate = d
		m.SlipDays = domain.ComputeSlipDays(m.PlannedDate, d)
	}
}

func WithGate(actionID string, kind domain.LinkKind) MilestoneOption {
	return func(m *domain.Milestone) {
		m.Prerequisites = append(m.Prerequisites, domain.Prerequisite{ActionID: actionID, Kind: kind})
	}
}

func NewTestMilestone(title string, planned time.Time, opts ...MilestoneOption) *domain.Milestone {
	now := time.Now().UTC()
	m := &domain.Milestone{
		ID:            uuid.New().String(),
		Title:         title,
		Axis:          "technique",
		Status:        domain.MilestoneUpcoming,
		PlannedDate:   planned,
		ProjectedDate: planned,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Risk options
type RiskOption func(*domain.Risk)

func WithRiskScope(axis, building string) RiskOption {
	return func(r *domain.Risk) {
		r.Axis = axis
		r.BuildingCode = building
	}
}

func WithRiskStatus(s domain.RiskStatus) RiskOption {
	return func(r *domain.Risk) {
		r.Status = s
	}
}

func WithScore(score int) RiskOption {
	return func(r *domain.Risk) {
		r.Score = score
	}
}

func NewTestRisk(title string, probability, impact int, opts ...RiskOption) *domain.Risk {
	now := time.Now().UTC()
	r := &domain.Risk{
		ID:          uuid.New().String(),
		Title:       title,
		Probability: probability,
		Impact:      impact,
		Score:       1,
		Status:      domain.RiskOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func NewTestSyncLink(sourceID string, targetIDs ...string) *domain.SyncLink {
	return &domain.SyncLink{
		ID:              uuid.New().String(),
		SourceActionID:  sourceID,
		TargetActionIDs: targetIDs,
		Kind:            domain.SyncFinishToStart,
	}
}

func NewTestBudgetLine(axis, label string, planned, committed, actual float64) *domain.BudgetLineItem {
	return &domain.BudgetLineItem{
		ID:              uuid.New().String(),
		Category:        "travaux",
		Axis:            axis,
		Label:           label,
		PlannedAmount:   planned,
		CommittedAmount: committed,
		ActualAmount:    actual,
		CreatedAt:       time.Now().UTC(),
	}
}
