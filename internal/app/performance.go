package app

import (
	"time"

	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/alexanderramin/pilotage/internal/engine"
)

type PerformanceRequest struct {
	Now *time.Time
}

// PerformanceReport bundles earned value and two-track synchronization.
type PerformanceReport struct {
	GeneratedAt  time.Time
	EarnedValue  engine.EarnedValue
	SPILevel     domain.PerformanceLevel
	CPILevel     domain.PerformanceLevel
	AxisProgress map[string]float64
	Sync         engine.SyncGap
	Trend        engine.SyncTrend
}
