package eval

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Baseline column names. The header row must contain all five; extra columns
// are ignored so the loader works on raw precinct files carrying more fields.
var baselineColumns = []string{
	"county_name", "precinct_name", "election_1", "election_2", "assignment",
}

// LoadBaseline reads the baseline tabular source into a Registry. Every row
// becomes one UnitRecord in source order; the identity index is built once
// over the finished collection. Any unreadable input or row that fails to
// parse into the required shape is a LoadError.
func LoadBaseline(r io.Reader, strict bool) (*Registry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("reading header: %w", err)}
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, &LoadError{Err: err}
	}

	var units []UnitRecord
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, &LoadError{Row: row, Err: err}
		}
		unit, err := parseUnitRow(record, cols)
		if err != nil {
			return nil, &LoadError{Row: row, Err: err}
		}
		units = append(units, unit)
	}

	reg, err := NewRegistry(units, strict)
	if err != nil {
		return nil, err
	}
	logrus.Infof("baseline loaded: %d units across %d counties", reg.Len(), reg.Counties())
	return reg, nil
}

// LoadBaselineFile opens path and loads it via LoadBaseline.
func LoadBaselineFile(path string, strict bool) (*Registry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("opening baseline: %w", err)}
	}
	defer func() { _ = file.Close() }()
	return LoadBaseline(file, strict)
}

// columnPositions holds the resolved position of each required column.
type columnPositions struct {
	county, precinct, election1, election2, assignment int
}

func resolveColumns(header []string) (columnPositions, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.TrimSpace(name)] = i
	}
	for _, name := range baselineColumns {
		if _, ok := positions[name]; !ok {
			return columnPositions{}, fmt.Errorf("missing column %q in header %v", name, header)
		}
	}
	return columnPositions{
		county:     positions["county_name"],
		precinct:   positions["precinct_name"],
		election1:  positions["election_1"],
		election2:  positions["election_2"],
		assignment: positions["assignment"],
	}, nil
}

func parseUnitRow(record []string, cols columnPositions) (UnitRecord, error) {
	for _, pos := range []int{cols.county, cols.precinct, cols.election1, cols.election2, cols.assignment} {
		if pos >= len(record) {
			return UnitRecord{}, fmt.Errorf("row has %d columns, expected at least %d", len(record), pos+1)
		}
	}
	election1, err := parseCount("election_1", record[cols.election1])
	if err != nil {
		return UnitRecord{}, err
	}
	election2, err := parseCount("election_2", record[cols.election2])
	if err != nil {
		return UnitRecord{}, err
	}
	assignment, err := parseCount("assignment", record[cols.assignment])
	if err != nil {
		return UnitRecord{}, err
	}
	return UnitRecord{
		County:     strings.TrimSpace(record[cols.county]),
		Precinct:   strings.TrimSpace(record[cols.precinct]),
		Election1:  election1,
		Election2:  election2,
		Assignment: assignment,
	}, nil
}

// parseCount parses a non-negative integer field.
func parseCount(name, raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid %s %d: must be non-negative", name, v)
	}
	return v, nil
}
