package domain

import (
	"fmt"
	"time"
)

// Prerequisite is an upstream edge from an action or milestone to an action.
type Prerequisite struct {
	ActionID string
	Kind     LinkKind
}

type Action struct {
	ID           string
	Title        string
	Axis         string
	BuildingCode string
	OwnerID      string
	MilestoneID  *string

	Status   ActionStatus
	Progress int

	// Schedule, stored as calendar days
	PlannedStart *time.Time
	PlannedEnd   *time.Time
	ActualEnd    *time.Time

	Prerequisites []Prerequisite

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasSchedule reports whether both planned bounds are set.
func (a *Action) HasSchedule() bool {
	return a.PlannedStart != nil && a.PlannedEnd != nil
}

// EffectiveEnd returns the actual end when known, otherwise the planned end.
func (a *Action) EffectiveEnd() *time.Time {
	if a.ActualEnd != nil {
		return a.ActualEnd
	}
	return a.PlannedEnd
}

// BlockingPrerequisites returns the ids of the blocking upstream actions.
func (a *Action) BlockingPrerequisites() []string {
	var ids []string
	for _, p := range a.Prerequisites {
		if p.Kind == LinkBlocking {
			ids = append(ids, p.ActionID)
		}
	}
	return ids
}

// Validate checks the structural invariants of an action record.
func (a *Action) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("action id is required")
	}
	if a.Progress < 0 || a.Progress > 100 {
		return fmt.Errorf("action %s: progress %d out of range [0,100]", a.ID, a.Progress)
	}
	if a.Status != "" && !ValidActionStatuses[a.Status] {
		return fmt.Errorf("action %s: unknown status %q", a.ID, a.Status)
	}
	if a.PlannedStart != nil && a.PlannedEnd != nil && a.PlannedEnd.Before(*a.PlannedStart) {
		return fmt.Errorf("action %s: planned end before planned start", a.ID)
	}
	return nil
}
