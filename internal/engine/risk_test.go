package engine

import (
	"testing"

	"github.com/alexanderramin/pilotage/internal/config"
	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/alexanderramin/pilotage/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRiskScore(t *testing.T) {
	assert.Equal(t, 12, ComputeRiskScore(3, 4))
	assert.Equal(t, 25, ComputeRiskScore(9, 5), "inputs clamp to 5")
	assert.Equal(t, 1, ComputeRiskScore(0, -3), "inputs clamp to 1")
}

func TestClassifyRisk(t *testing.T) {
	bands := config.DefaultConfig().Risk

	tests := []struct {
		score int
		want  domain.RiskLevel
	}{
		{1, domain.RiskModerate},
		{8, domain.RiskModerate},
		{9, domain.RiskMajor},
		{12, domain.RiskMajor},
		{13, domain.RiskCritical},
		{25, domain.RiskCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyRisk(tt.score, bands), "score %d", tt.score)
	}
}

func TestMatchRiskActions(t *testing.T) {
	a1 := testutil.NewTestAction("a1", testutil.WithBuilding("B1"))
	a2 := testutil.NewTestAction("a2", testutil.WithBuilding("B1"))
	a3 := testutil.NewTestAction("a3", testutil.WithBuilding("B2"))
	a4 := testutil.NewTestAction("a4", testutil.WithAxis("rh"), testutil.WithBuilding("B1"))

	r1 := testutil.NewTestRisk("r1", 3, 3, testutil.WithRiskScope("technique", "B1"))
	r2 := testutil.NewTestRisk("r2", 3, 3, testutil.WithRiskScope("technique", "B9"))
	closed := testutil.NewTestRisk("r3", 3, 3, testutil.WithRiskScope("technique", "B1"), testutil.WithRiskStatus(domain.RiskClosed))

	got := MatchRiskActions([]*domain.Risk{r1, r2, closed}, []*domain.Action{a1, a2, a3, a4})

	require.Len(t, got, 1)
	assert.ElementsMatch(t, []string{a1.ID, a2.ID}, got[r1.ID])
}
