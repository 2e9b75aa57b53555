package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plan-eval/plan-eval/eval"
)

func writeTempSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spec.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultEvalSpec_MatchesCoreDefaults(t *testing.T) {
	spec := DefaultEvalSpec()
	cfg := spec.Config()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, eval.DefaultConfig(), cfg)
}

func TestLoadEvalSpec_OverlaysFileOntoDefaults(t *testing.T) {
	// GIVEN a spec file setting a subset of fields
	path := writeTempSpec(t, "baseline: units.csv\nskip_records: 7\ndistrict_policy: fail\n")

	spec := DefaultEvalSpec()
	require.NoError(t, LoadEvalSpec(path, &spec))

	// THEN listed fields are overridden and unlisted fields keep defaults
	assert.Equal(t, "units.csv", spec.Baseline)
	assert.Equal(t, 7, spec.SkipRecords)
	assert.Equal(t, "fail", spec.DistrictPolicy)
	assert.Equal(t, 0.03, spec.CompetitiveMargin)
}

func TestLoadEvalSpec_UnknownFieldFails(t *testing.T) {
	// A typoed key must fail instead of silently running with a default.
	path := writeTempSpec(t, "skip_recordz: 7\n")
	spec := DefaultEvalSpec()
	if err := LoadEvalSpec(path, &spec); err == nil {
		t.Fatal("expected unknown-field error for typoed key")
	}
}

func TestLoadEvalSpec_MissingFileFails(t *testing.T) {
	spec := DefaultEvalSpec()
	err := LoadEvalSpec(filepath.Join(t.TempDir(), "nope.yaml"), &spec)
	assert.Error(t, err)
}

func TestApplyEnv_OverridesFileValues(t *testing.T) {
	// GIVEN a file value and a conflicting environment variable
	path := writeTempSpec(t, "skip_records: 7\n")
	spec := DefaultEvalSpec()
	require.NoError(t, LoadEvalSpec(path, &spec))

	t.Setenv("PLAN_EVAL_SKIP_RECORDS", "9")
	t.Setenv("PLAN_EVAL_STRICT_BASELINE", "true")
	require.NoError(t, ApplyEnv(&spec))

	// THEN the environment wins over the file
	assert.Equal(t, 9, spec.SkipRecords)
	assert.True(t, spec.StrictBaseline)
}

func TestOverlayFlags_ExplicitFlagBeatsEnv(t *testing.T) {
	spec := DefaultEvalSpec()
	spec.SkipRecords = 9 // as if overlaid from the environment

	// WHEN the flag is set explicitly on the command line
	require.NoError(t, tallyCmd.Flags().Set("skip-records", "2"))
	overlayFlags(tallyCmd, &spec)

	// THEN the explicit flag wins, untouched knobs keep their overlay
	assert.Equal(t, 2, spec.SkipRecords)
	assert.Equal(t, "drop", spec.DistrictPolicy)
}

func TestEvalSpec_ConfigMapsAllCoreFields(t *testing.T) {
	spec := EvalSpec{
		SkipRecords:       1,
		MaxDistrict:       4,
		DistrictPolicy:    "fail",
		StrictBaseline:    true,
		CompetitiveMargin: 0.05,
	}
	cfg := spec.Config()
	assert.Equal(t, eval.Config{
		SkipRecords:       1,
		MaxDistrict:       4,
		Policy:            eval.DistrictPolicyFail,
		StrictBaseline:    true,
		CompetitiveMargin: 0.05,
	}, cfg)
}
