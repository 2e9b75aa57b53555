package eval

import (
	"fmt"
	"math"
)

// DistrictPolicy selects what happens when a plan assigns a unit to a
// district index above the configured maximum.
type DistrictPolicy string

const (
	// DistrictPolicyDrop silently excludes out-of-range contributions from
	// aggregation, matching the permissive behavior of the sampling pipeline.
	DistrictPolicyDrop DistrictPolicy = "drop"
	// DistrictPolicyFail aborts the run with an IndexRangeError.
	DistrictPolicyFail DistrictPolicy = "fail"
)

// validDistrictPolicies maps accepted policy strings.
var validDistrictPolicies = map[DistrictPolicy]bool{
	DistrictPolicyDrop: true,
	DistrictPolicyFail: true,
	"":                 true, // empty defaults to drop
}

// IsValidDistrictPolicy returns true if the given string is a recognized
// district policy.
func IsValidDistrictPolicy(policy string) bool {
	return validDistrictPolicies[DistrictPolicy(policy)]
}

// Config controls one evaluation run.
type Config struct {
	// SkipRecords is the number of leading plan-stream lines treated as
	// headers/metadata and skipped unconditionally before decoding begins.
	SkipRecords int

	// MaxDistrict is the highest district index aggregation will accept.
	// Zero leaves the range unbounded, with totals sized to the largest
	// assignment seen; an explicit value below the baseline's largest
	// assignment is an IndexRangeError at load.
	MaxDistrict int

	// Policy decides the fate of assignments above MaxDistrict.
	Policy DistrictPolicy

	// StrictBaseline promotes duplicate (county, precinct) identities in the
	// baseline from a warning to a LoadError.
	StrictBaseline bool

	// CompetitiveMargin is the vote-share distance from 1/2 inside which a
	// district counts as competitive in the score summary.
	CompetitiveMargin float64
}

// DefaultConfig returns the configuration the observed pipeline ran with:
// three metadata lines skipped, no district cap, out-of-range contributions
// dropped when a cap is set.
func DefaultConfig() Config {
	return Config{
		SkipRecords:       3,
		MaxDistrict:       0,
		Policy:            DistrictPolicyDrop,
		CompetitiveMargin: 0.03,
	}
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.SkipRecords < 0 {
		return fmt.Errorf("skip_records must be non-negative, got %d", c.SkipRecords)
	}
	if c.MaxDistrict < 0 {
		return fmt.Errorf("max_district must be non-negative, got %d", c.MaxDistrict)
	}
	if !validDistrictPolicies[c.Policy] {
		return fmt.Errorf("unknown district policy %q; valid: drop, fail", c.Policy)
	}
	if math.IsNaN(c.CompetitiveMargin) || c.CompetitiveMargin < 0 || c.CompetitiveMargin >= 0.5 {
		return fmt.Errorf("competitive_margin must be in [0, 0.5), got %f", c.CompetitiveMargin)
	}
	return nil
}

func (c *Config) policy() DistrictPolicy {
	if c.Policy == "" {
		return DistrictPolicyDrop
	}
	return c.Policy
}
