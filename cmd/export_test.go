package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plan-eval/plan-eval/eval"
)

func TestWriteAssignmentCSV_BaselineOrder(t *testing.T) {
	reg, err := eval.NewRegistry([]eval.UnitRecord{
		{County: "X", Precinct: "A", Election1: 1, Election2: 2, Assignment: 3},
		{County: "X", Precinct: "B", Election1: 4, Election2: 5, Assignment: 0},
	}, false)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "assignment.csv")
	require.NoError(t, writeAssignmentCSV(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "county_name,precinct_name,district\nX,A,3\nX,B,0\n"
	assert.Equal(t, want, string(data))
}

func TestWriteAssignmentCSV_ReflectsResolvedPlans(t *testing.T) {
	reg, err := eval.NewRegistry([]eval.UnitRecord{
		{County: "X", Precinct: "A", Assignment: 0},
		{County: "Y", Precinct: "B", Assignment: 1},
	}, false)
	require.NoError(t, err)

	// Apply a county-wide reassignment before exporting.
	plan, decodeErr := eval.DecodePlan([]byte(`{"districting": [{"[\"X\"]": 4}]}`), 1)
	require.NoError(t, decodeErr)
	eval.Resolve(reg, plan)

	path := filepath.Join(t.TempDir(), "assignment.csv")
	require.NoError(t, writeAssignmentCSV(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "X,A,4")
	assert.Contains(t, string(data), "Y,B,1")
}

func TestWriteAssignmentCSV_BadDestinationFails(t *testing.T) {
	reg, err := eval.NewRegistry([]eval.UnitRecord{{County: "X", Precinct: "A"}}, false)
	require.NoError(t, err)
	assert.Error(t, writeAssignmentCSV(filepath.Join(t.TempDir(), "missing", "out.csv"), reg))
}
