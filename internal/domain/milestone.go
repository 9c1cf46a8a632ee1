package domain

import "time"

// Milestone is a dated checkpoint (jalon) gated by prerequisite actions.
type Milestone struct {
	ID            string
	Title         string
	Axis          string
	Status        MilestoneStatus
	PlannedDate   time.Time
	ProjectedDate time.Time
	SlipDays      int

	Prerequisites []Prerequisite

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ComputeSlipDays returns max(0, projected - planned) in whole calendar days.
func ComputeSlipDays(planned, projected time.Time) int {
	d := DaysBetween(planned, projected)
	if d < 0 {
		return 0
	}
	return d
}
