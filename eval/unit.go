package eval

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// UnitRecord is one geographic reporting unit: a precinct, or a whole county
// when Precinct is empty. Vote totals are fixed for the run; Assignment is
// overwritten as plans are applied.
type UnitRecord struct {
	County     string
	Precinct   string
	Election1  int
	Election2  int
	Assignment int
}

// UnitKey is the compound identity of a unit. It must be unique across the
// baseline; see NewRegistry for how duplicates are handled.
type UnitKey struct {
	County   string
	Precinct string
}

func (k UnitKey) String() string {
	if k.Precinct == "" {
		return k.County
	}
	return k.County + "/" + k.Precinct
}

// Registry owns the ordered unit collection plus a derived read-only index
// from identity to position. All mutation goes through Units; the index maps
// identity to position, never to values, so it stays valid for the whole run.
type Registry struct {
	Units []UnitRecord

	index map[UnitKey]int
}

// NewRegistry builds a registry over units, indexing each (county, precinct)
// identity to its position. A duplicate identity shadows the earlier row's
// index entry with the later position (the earlier row still participates in
// county-level bulk updates and in aggregation). With strict set, a duplicate
// is a LoadError instead.
func NewRegistry(units []UnitRecord, strict bool) (*Registry, error) {
	index := make(map[UnitKey]int, len(units))
	for i, u := range units {
		key := UnitKey{County: u.County, Precinct: u.Precinct}
		if prev, dup := index[key]; dup {
			if strict {
				return nil, &LoadError{Err: fmt.Errorf("duplicate unit identity %q (rows %d and %d)", key, prev+1, i+1)}
			}
			logrus.Warnf("duplicate unit identity %q: row %d shadows row %d in the index", key, i+1, prev+1)
		}
		index[key] = i
	}
	return &Registry{Units: units, index: index}, nil
}

// Lookup returns the position of the unit with the given identity.
func (r *Registry) Lookup(key UnitKey) (int, bool) {
	pos, ok := r.index[key]
	return pos, ok
}

// Len returns the number of units in the registry.
func (r *Registry) Len() int { return len(r.Units) }

// Counties returns the number of distinct county names across all units.
func (r *Registry) Counties() int {
	seen := make(map[string]bool)
	for _, u := range r.Units {
		seen[u.County] = true
	}
	return len(seen)
}

// MaxAssignment returns the largest district index currently assigned, or 0
// for an empty registry.
func (r *Registry) MaxAssignment() int {
	highest := 0
	for _, u := range r.Units {
		highest = max(highest, u.Assignment)
	}
	return highest
}

// Identifiers returns one stable string identity per unit, in registry order.
func (r *Registry) Identifiers() []string {
	ids := make([]string, len(r.Units))
	for i, u := range r.Units {
		ids[i] = UnitKey{County: u.County, Precinct: u.Precinct}.String()
	}
	return ids
}
