package eval

import "github.com/sirupsen/logrus"

// DistrictTotals holds per-district vote totals for one plan, recomputed
// from scratch after each plan is resolved. Slices are indexed by district;
// district 0 also collects units whose assignment value never parsed.
// Districts with no assigned units contribute (0, 0).
type DistrictTotals struct {
	Election1 []int
	Election2 []int
}

// Districts reports the number of district slots, including district 0.
func (t *DistrictTotals) Districts() int { return len(t.Election1) }

func (t *DistrictTotals) grow(district int) {
	for len(t.Election1) <= district {
		t.Election1 = append(t.Election1, 0)
		t.Election2 = append(t.Election2, 0)
	}
}

// Tabulate sums each unit's votes into its currently assigned district. A
// configured maximum bounds the district range: under the drop policy, units
// assigned past it are silently excluded; under the fail policy the first
// such unit aborts the run with an IndexRangeError. A maximum of zero leaves
// the range unbounded and the totals sized to the largest assignment seen.
// Units carrying a negative assignment never tabulate.
func Tabulate(reg *Registry, cfg Config) (*DistrictTotals, error) {
	totals := &DistrictTotals{}
	if cfg.MaxDistrict > 0 {
		totals.grow(cfg.MaxDistrict)
	}
	dropped := 0
	for _, u := range reg.Units {
		d := u.Assignment
		if d < 0 {
			key := UnitKey{County: u.County, Precinct: u.Precinct}
			logrus.Debugf("unit %s carries negative assignment %d, skipping", key, d)
			continue
		}
		if cfg.MaxDistrict > 0 && d > cfg.MaxDistrict {
			key := UnitKey{County: u.County, Precinct: u.Precinct}
			if cfg.policy() == DistrictPolicyFail {
				return nil, &IndexRangeError{District: d, Max: cfg.MaxDistrict, Unit: key.String()}
			}
			logrus.Debugf("unit %s assigned to district %d beyond maximum %d, dropping", key, d, cfg.MaxDistrict)
			dropped++
			continue
		}
		totals.grow(d)
		totals.Election1[d] += u.Election1
		totals.Election2[d] += u.Election2
	}
	if dropped > 0 {
		logrus.Warnf("dropped %d units assigned beyond district maximum %d", dropped, cfg.MaxDistrict)
	}
	return totals, nil
}

// CountWins counts the districts whose election-1 total strictly exceeds the
// election-2 total. Ties and empty districts are not wins.
func CountWins(t *DistrictTotals) int {
	wins := 0
	for d := range t.Election1 {
		if t.Election1[d] > t.Election2[d] {
			wins++
		}
	}
	return wins
}
