package scores

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShares_SkipsEmptyDistricts(t *testing.T) {
	got := Shares([]int{0, 60, 30}, []int{0, 40, 70})
	assert.Equal(t, []float64{0.6, 0.3}, got)
}

func TestEfficiencyGap_SymmetricPlanIsZero(t *testing.T) {
	// Two mirrored districts: both sides waste the same votes.
	got := EfficiencyGap([]int{60, 40}, []int{40, 60})
	assert.InDelta(t, 0, got, 1e-12)
}

func TestEfficiencyGap_PackedSideWastesMore(t *testing.T) {
	// District 0: 70/30 won by side 1 (wastes 20 surplus, side 2 wastes 30).
	// District 1: 45/55 lost by side 1 (wastes 45, side 2 wastes 5).
	// Side 1 wastes 65 of 200, side 2 wastes 35: the gap runs against side 1.
	got := EfficiencyGap([]int{70, 45}, []int{30, 55})
	assert.InDelta(t, -0.15, got, 1e-12)
}

func TestEfficiencyGap_TieWastesBothSides(t *testing.T) {
	got := EfficiencyGap([]int{50}, []int{50})
	assert.InDelta(t, 0, got, 1e-12)
}

func TestSimplifiedEfficiencyGap_MatchesSeatAndVoteShares(t *testing.T) {
	// seatShare 1/2, voteShare 0.575: 0.5 + 0.5 - 1.15 = -0.15.
	got := SimplifiedEfficiencyGap([]int{70, 45}, []int{30, 55})
	assert.InDelta(t, -0.15, got, 1e-12)
}

func TestSimplifiedEfficiencyGap_NoContestedDistricts(t *testing.T) {
	assert.Equal(t, 0.0, SimplifiedEfficiencyGap([]int{0, 0}, []int{0, 0}))
}

func TestMeanMedian_OddDistrictCount(t *testing.T) {
	// Shares 0.6, 0.55, 0.3: median 0.55, mean 0.4833...
	got := MeanMedian([]int{60, 55, 30}, []int{40, 45, 70})
	assert.InDelta(t, 0.55-(0.6+0.55+0.3)/3, got, 1e-12)
}

func TestMeanMedian_EvenCountUsesMidpoint(t *testing.T) {
	// Shares 0.3, 0.4, 0.6, 0.8: median (0.4+0.6)/2 = 0.5, mean 0.525.
	got := MeanMedian([]int{30, 40, 60, 80}, []int{70, 60, 40, 20})
	assert.InDelta(t, -0.025, got, 1e-12)
}

func TestMeanMedian_NoContestedDistricts(t *testing.T) {
	assert.Equal(t, 0.0, MeanMedian(nil, nil))
}

func TestCompetitiveDistricts_StrictWindow(t *testing.T) {
	// Shares 0.48, 0.53, 0.6 with margin 0.03: the window is (0.47, 0.53)
	// exclusive, so only 0.48 counts.
	got := CompetitiveDistricts([]int{48, 53, 60}, []int{52, 47, 40}, 0.03)
	assert.Equal(t, 1, got)
}

func TestSummary_CarriesEveryScore(t *testing.T) {
	summary := Summary([]int{70, 45}, []int{30, 55}, 0.03)
	assert.InDelta(t, -0.15, summary["efficiency_gap"], 1e-12)
	assert.InDelta(t, -0.15, summary["simplified_efficiency_gap"], 1e-12)
	assert.Contains(t, summary, "mean_median")
	assert.Equal(t, 0.0, summary["competitive_districts"])
}
