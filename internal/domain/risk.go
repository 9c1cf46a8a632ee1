package domain

import "time"

type Risk struct {
	ID           string
	Title        string
	Probability  int
	Impact       int
	Score        int
	Status       RiskStatus
	Axis         string
	BuildingCode string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RiskActionLink associates a risk with an action sharing its scope.
// Source is "auto" for links maintained by the linker, "manual" otherwise.
type RiskActionLink struct {
	RiskID   string
	ActionID string
	Source   string
}

const (
	LinkSourceAuto   = "auto"
	LinkSourceManual = "manual"
)
