package eval

import "github.com/sirupsen/logrus"

// Resolve applies a decoded plan onto the registry, overwriting each touched
// unit's current assignment in place. Entries apply in document order, so a
// later entry touching the same unit wins. Assignments persist between
// plans: each plan starts from whatever the previous one left behind, and
// units a plan never names keep their prior district.
//
// County keys reassign every unit in the county by a full scan (bulk updates
// are rare and the scan is cheap at this scale); unit keys go through the
// identity index. Unknown counties or units and keys that did not decode are
// no-ops. Resolve never fails.
func Resolve(reg *Registry, plan *PlanRecord) {
	for _, e := range plan.Entries {
		switch e.Key.Kind {
		case KeyCounty:
			matched := false
			for i := range reg.Units {
				if reg.Units[i].County == e.Key.Unit.County {
					reg.Units[i].Assignment = e.District
					matched = true
				}
			}
			if !matched {
				logrus.Debugf("assignment key %q matches no county, skipping", e.Key.Raw)
			}
		case KeyUnit:
			if i, ok := reg.Lookup(e.Key.Unit); ok {
				reg.Units[i].Assignment = e.District
			} else {
				logrus.Debugf("assignment key %q matches no unit, skipping", e.Key.Raw)
			}
		default:
			logrus.Debugf("assignment key %q does not decode, skipping", e.Key.Raw)
		}
	}
}
