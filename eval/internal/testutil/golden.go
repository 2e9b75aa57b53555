// Package testutil provides shared test infrastructure for the tabulator.
// It consolidates the golden scenario types and assertion helpers used
// across the eval package tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// GoldenDataset represents the structure of testdata/golden_scenarios.json.
type GoldenDataset struct {
	Cases []GoldenCase `json:"cases"`
}

// GoldenCase is one end-to-end scenario: a baseline, a plan stream, and the
// tallies a run over them must produce.
type GoldenCase struct {
	Name     string            `json:"name"`
	Baseline []string          `json:"baseline"`
	Skip     int               `json:"skip"`
	Stream   []json.RawMessage `json:"stream"`

	// Wins holds the expected win count of each processed plan in order;
	// Histogram and Average are the expected final tracker state.
	Wins      []int   `json:"wins"`
	Histogram []int   `json:"histogram"`
	Average   float64 `json:"average"`
}

// BaselineCSV joins the case's baseline rows into one CSV document.
func (c *GoldenCase) BaselineCSV() string {
	return strings.Join(c.Baseline, "\n") + "\n"
}

// StreamBytes renders the case's stream as line-delimited records, one
// compact JSON document per line, preserving key order.
func (c *GoldenCase) StreamBytes(t *testing.T) []byte {
	t.Helper()
	var out bytes.Buffer
	for _, record := range c.Stream {
		var line bytes.Buffer
		if err := json.Compact(&line, record); err != nil {
			t.Fatalf("Failed to compact stream record: %v", err)
		}
		out.Write(line.Bytes())
		out.WriteByte('\n')
	}
	return out.Bytes()
}

// LoadGoldenDataset loads the golden scenarios from the testdata directory.
// The path is resolved relative to this source file: eval/internal/testutil/
// → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "golden_scenarios.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden scenarios: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden scenarios: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
