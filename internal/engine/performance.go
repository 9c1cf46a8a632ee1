package engine

import (
	"sort"
	"time"

	"github.com/alexanderramin/pilotage/internal/config"
	"github.com/alexanderramin/pilotage/internal/domain"
)

// EVInput is the data earned value analysis runs over.
type EVInput struct {
	Lines   []*domain.BudgetLineItem
	Actions []*domain.Action
	Today   time.Time
}

// EarnedValue holds the EVM figures. Indices that would divide by zero are nil.
type EarnedValue struct {
	BAC float64
	PV  float64
	EV  float64
	AC  float64

	SPI *float64
	CPI *float64
	EAC *float64
	ETC *float64
	VAC *float64
}

// AxisProgress returns the mean progress of the non-cancelled actions of
// each axis.
func AxisProgress(actions []*domain.Action) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, a := range actions {
		if a.Status == domain.ActionCancelled {
			continue
		}
		sums[a.Axis] += float64(a.Progress)
		counts[a.Axis]++
	}
	out := make(map[string]float64, len(sums))
	for axis, sum := range sums {
		out[axis] = sum / float64(counts[axis])
	}
	return out
}

// SortedAxes returns the keys of an axis map in lexical order.
func SortedAxes(m map[string]float64) []string {
	axes := make([]string, 0, len(m))
	for axis := range m {
		axes = append(axes, axis)
	}
	sort.Strings(axes)
	return axes
}

type axisWindow struct {
	start, end time.Time
	ok         bool
}

func axisWindows(actions []*domain.Action) map[string]axisWindow {
	out := make(map[string]axisWindow)
	for _, a := range actions {
		if a.Status == domain.ActionCancelled || !a.HasSchedule() {
			continue
		}
		s := domain.TruncateDay(*a.PlannedStart)
		e := domain.TruncateDay(*a.PlannedEnd)
		w, ok := out[a.Axis]
		if !ok {
			out[a.Axis] = axisWindow{start: s, end: e, ok: true}
			continue
		}
		if s.Before(w.start) {
			w.start = s
		}
		if e.After(w.end) {
			w.end = e
		}
		out[a.Axis] = w
	}
	return out
}

// elapsedFraction is the share of the window elapsed at today, in [0,1].
func (w axisWindow) elapsedFraction(today time.Time) float64 {
	if !w.ok {
		return 0
	}
	t := domain.TruncateDay(today)
	if !t.After(w.start) {
		return 0
	}
	if !t.Before(w.end) {
		return 1
	}
	total := float64(domain.DaysBetween(w.start, w.end))
	return float64(domain.DaysBetween(w.start, t)) / total
}

// ComputeEarnedValue aggregates budget lines against the progress and
// schedule window of their axis.
func ComputeEarnedValue(in EVInput) EarnedValue {
	progress := AxisProgress(in.Actions)
	windows := axisWindows(in.Actions)

	var bac, pv, ev, ac float64
	for _, l := range in.Lines {
		bac += l.PlannedAmount
		ac += l.ActualAmount
		pv += l.PlannedAmount * windows[l.Axis].elapsedFraction(in.Today)
		ev += l.PlannedAmount * progress[l.Axis] / 100
	}
	return ComputeIndices(bac, pv, ev, ac)
}

// ComputeIndices derives SPI, CPI and the forecasts from the four base values.
func ComputeIndices(bac, pv, ev, ac float64) EarnedValue {
	out := EarnedValue{BAC: bac, PV: pv, EV: ev, AC: ac}
	if pv != 0 {
		out.SPI = floatPtr(ev / pv)
	}
	if ac != 0 {
		out.CPI = floatPtr(ev / ac)
	}
	if out.CPI != nil && *out.CPI > 0 {
		eac := ac + (bac-ev)/(*out.CPI)
		out.EAC = floatPtr(eac)
		out.ETC = floatPtr(eac - ac)
		out.VAC = floatPtr(bac - eac)
	}
	return out
}

// ClassifyIndex maps an SPI or CPI value onto a performance level.
func ClassifyIndex(v *float64, bands config.PerformanceBands) domain.PerformanceLevel {
	switch {
	case v == nil:
		return domain.PerfUnknown
	case *v < bands.BehindBelow:
		return domain.PerfBehind
	case *v > bands.AheadAbove:
		return domain.PerfAhead
	default:
		return domain.PerfOnTrack
	}
}

func floatPtr(f float64) *float64 { return &f }
