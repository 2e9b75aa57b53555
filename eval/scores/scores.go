// Package scores computes plan-wide partisan summary statistics from
// per-district vote totals. Election 1 and election 2 are treated as the two
// sides of a single contest; positive values of the signed scores favor the
// election-1 side. Districts with no recorded votes are excluded everywhere,
// so empty slots in the totals never skew a score.
package scores

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Shares returns the election-1 vote share of every contested district. The
// inputs are parallel per-district totals; districts with no votes at all
// are skipped.
func Shares(election1, election2 []int) []float64 {
	shares := make([]float64, 0, len(election1))
	for d := range election1 {
		total := election1[d] + election2[d]
		if total == 0 {
			continue
		}
		shares = append(shares, float64(election1[d])/float64(total))
	}
	return shares
}

// EfficiencyGap is the difference in wasted votes between the two sides,
// relative to all votes cast. A district's winner wastes votes beyond the
// half-total threshold, the loser wastes all of its votes, and a tied
// district wastes both sides entirely.
func EfficiencyGap(election1, election2 []int) float64 {
	var wasted1, wasted2, total float64
	for d := range election1 {
		v1, v2 := float64(election1[d]), float64(election2[d])
		t := v1 + v2
		if t == 0 {
			continue
		}
		total += t
		switch {
		case v1 > v2:
			wasted1 += v1 - t/2
			wasted2 += v2
		case v2 > v1:
			wasted1 += v1
			wasted2 += v2 - t/2
		default:
			wasted1 += v1
			wasted2 += v2
		}
	}
	if total == 0 {
		return 0
	}
	return (wasted2 - wasted1) / total
}

// SimplifiedEfficiencyGap is the seat-share form of the efficiency gap:
// seatShare + 1/2 - 2*voteShare, with seats counted over contested
// districts only.
func SimplifiedEfficiencyGap(election1, election2 []int) float64 {
	var votes1, total float64
	contested, won := 0, 0
	for d := range election1 {
		v1, v2 := float64(election1[d]), float64(election2[d])
		t := v1 + v2
		if t == 0 {
			continue
		}
		contested++
		votes1 += v1
		total += t
		if v1 > v2 {
			won++
		}
	}
	if contested == 0 {
		return 0
	}
	seatShare := float64(won) / float64(contested)
	voteShare := votes1 / total
	return seatShare + 0.5 - 2*voteShare
}

// MeanMedian is the median election-1 district share minus the mean share.
// A positive value means the election-1 side's median district runs ahead of
// its overall performance.
func MeanMedian(election1, election2 []int) float64 {
	shares := Shares(election1, election2)
	if len(shares) == 0 {
		return 0
	}
	sort.Float64s(shares)
	return median(shares) - stat.Mean(shares, nil)
}

// CompetitiveDistricts counts contested districts whose election-1 share
// lies strictly within margin of an even split.
func CompetitiveDistricts(election1, election2 []int, margin float64) int {
	n := 0
	for _, share := range Shares(election1, election2) {
		if share > 0.5-margin && share < 0.5+margin {
			n++
		}
	}
	return n
}

// Summary computes every score for one plan's district totals.
func Summary(election1, election2 []int, competitiveMargin float64) map[string]float64 {
	return map[string]float64{
		"efficiency_gap":            EfficiencyGap(election1, election2),
		"simplified_efficiency_gap": SimplifiedEfficiencyGap(election1, election2),
		"mean_median":               MeanMedian(election1, election2),
		"competitive_districts":     float64(CompetitiveDistricts(election1, election2, competitiveMargin)),
	}
}

// median of a sorted slice, averaging the middle pair for even counts. The
// midpoint convention matters here: gonum's empirical quantile picks the
// lower middle element instead.
func median(sorted []float64) float64 {
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
