package engine

import (
	"math"
	"time"

	"github.com/alexanderramin/pilotage/internal/config"
	"github.com/alexanderramin/pilotage/internal/domain"
)

// SyncGap compares the technical track with the mobilization track.
type SyncGap struct {
	TechnicalPct    float64
	MobilizationPct float64
	Gap             float64
	Class           domain.SyncClass
	// MobilizationAxes lists the axes averaged into MobilizationPct.
	MobilizationAxes []string
}

// SyncTrend compares the current gap with a baseline snapshot.
type SyncTrend struct {
	Trend       domain.SyncTrend
	HasBaseline bool
	BaselineGap float64
	BaselineAt  time.Time
	Delta       float64
}

// ComputeSyncGap measures the gap between the technical axis average and the
// mean of the remaining non-excluded axis averages.
func ComputeSyncGap(actions []*domain.Action, cfg config.SyncConfig) SyncGap {
	progress := AxisProgress(actions)
	out := SyncGap{TechnicalPct: progress[cfg.TechnicalAxis]}

	var sum float64
	for _, axis := range SortedAxes(progress) {
		if axis == cfg.TechnicalAxis || cfg.IsExcludedAxis(axis) {
			continue
		}
		sum += progress[axis]
		out.MobilizationAxes = append(out.MobilizationAxes, axis)
	}
	if n := len(out.MobilizationAxes); n > 0 {
		out.MobilizationPct = sum / float64(n)
	}

	out.Gap = out.TechnicalPct - out.MobilizationPct
	out.Class = ClassifyGap(out.Gap, cfg)
	return out
}

// ClassifyGap places a gap in the synchronization bands.
func ClassifyGap(gap float64, cfg config.SyncConfig) domain.SyncClass {
	abs := math.Abs(gap)
	switch {
	case abs <= cfg.BandA:
		return domain.SyncInPhase
	case abs <= cfg.BandB && gap > 0:
		return domain.SyncAhead
	case abs <= cfg.BandB:
		return domain.SyncBehind
	default:
		return domain.SyncCritical
	}
}

// ComputeTrend compares |gap| against a baseline snapshot. A nil baseline
// yields a stable trend.
func ComputeTrend(gap float64, baseline *domain.SyncSnapshot, noise float64) SyncTrend {
	if baseline == nil {
		return SyncTrend{Trend: domain.TrendStable}
	}
	delta := math.Abs(gap) - math.Abs(baseline.Gap)
	out := SyncTrend{
		Trend:       domain.TrendStable,
		HasBaseline: true,
		BaselineGap: baseline.Gap,
		BaselineAt:  baseline.TakenAt,
		Delta:       delta,
	}
	switch {
	case delta < -noise:
		out.Trend = domain.TrendImproving
	case delta > noise:
		out.Trend = domain.TrendDegrading
	}
	return out
}

// BaselineCutoff is the latest instant a trend baseline may be taken at.
func BaselineCutoff(now time.Time, baselineDays int) time.Time {
	return now.UTC().AddDate(0, 0, -baselineDays)
}
