package engine

import (
	"github.com/alexanderramin/pilotage/internal/config"
	"github.com/alexanderramin/pilotage/internal/domain"
)

// ComputeRiskScore returns probability × impact with both inputs clamped
// into [1,5].
func ComputeRiskScore(probability, impact int) int {
	return clampInt(probability, 1, 5) * clampInt(impact, 1, 5)
}

// ClassifyRisk maps a score onto its criticality band.
func ClassifyRisk(score int, bands config.RiskBands) domain.RiskLevel {
	switch {
	case score >= bands.CriticalMin:
		return domain.RiskCritical
	case score >= bands.MajorMin:
		return domain.RiskMajor
	default:
		return domain.RiskModerate
	}
}

// MatchRiskActions returns, for every open risk, the actions sharing its
// axis and building code. Risks without a match are omitted.
func MatchRiskActions(risks []*domain.Risk, actions []*domain.Action) map[string][]string {
	type scope struct{ axis, building string }
	byScope := make(map[scope][]string)
	for _, a := range actions {
		k := scope{a.Axis, a.BuildingCode}
		byScope[k] = append(byScope[k], a.ID)
	}

	out := make(map[string][]string)
	for _, r := range risks {
		if r.Status == domain.RiskClosed {
			continue
		}
		if ids := byScope[scope{r.Axis, r.BuildingCode}]; len(ids) > 0 {
			out[r.ID] = append([]string(nil), ids...)
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
