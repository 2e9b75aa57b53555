package sink

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	got    []PlanTally
	failed bool
}

func (c *captureSink) Emit(t PlanTally) error {
	if c.failed {
		return errors.New("capture failed")
	}
	c.got = append(c.got, t)
	return nil
}

func (c *captureSink) Close() error { return nil }

func sampleTally() PlanTally {
	return PlanTally{
		Seq:       2,
		Name:      "plan-2",
		Weight:    1,
		Won:       1,
		Histogram: []int{1, 1},
		Plans:     2,
		Average:   0.5,
		Districts: []DistrictVotes{
			{District: 0},
			{District: 1, Election1: 10, Election2: 5, Won: true},
		},
	}
}

func TestConsoleSink_TwoLinesPerPlan(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf, false)

	require.NoError(t, s.Emit(sampleTally()))

	want := "wins [1 1]\nplan 2: won=1 avg=0.5000\n"
	assert.Equal(t, want, buf.String())
}

func TestConsoleSink_CadenceAccumulates(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf, false)
	require.NoError(t, s.Emit(sampleTally()))
	require.NoError(t, s.Emit(sampleTally()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 4, "exactly two lines per emitted plan")
}

func TestConsoleSink_ColorWrapsInEscapes(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf, true)
	require.NoError(t, s.Emit(sampleTally()))
	assert.Contains(t, buf.String(), "\033[")
	assert.Contains(t, buf.String(), "won=1")
}

func TestMulti_FansOutInOrder(t *testing.T) {
	a := &captureSink{}
	b := &captureSink{}
	m := Multi{a, b}

	require.NoError(t, m.Emit(sampleTally()))
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
	require.NoError(t, m.Close())
}

func TestMulti_StopsAtFirstFailure(t *testing.T) {
	a := &captureSink{failed: true}
	b := &captureSink{}
	m := Multi{a, b}

	assert.Error(t, m.Emit(sampleTally()))
	assert.Empty(t, b.got)
}
