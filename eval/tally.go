package eval

import "math"

// WinSummary is a point-in-time view of the tracked win distribution.
type WinSummary struct {
	// Histogram counts plans by win count; index w holds the number of
	// plans that won exactly w districts. Its length is one past the
	// highest win count seen so far.
	Histogram []int
	Plans     int
	TotalWins int
	// Average is total wins over plans, NaN before any plan is recorded.
	Average float64
}

// Tracker accumulates the win distribution across a run.
type Tracker struct {
	histogram []int
	plans     int
	totalWins int
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker { return &Tracker{} }

// Record adds one plan's win count to the distribution.
func (t *Tracker) Record(wins int) {
	for len(t.histogram) <= wins {
		t.histogram = append(t.histogram, 0)
	}
	t.histogram[wins]++
	t.plans++
	t.totalWins += wins
}

// Plans reports how many plans have been recorded.
func (t *Tracker) Plans() int { return t.plans }

// Snapshot copies out the current distribution.
func (t *Tracker) Snapshot() WinSummary {
	hist := make([]int, len(t.histogram))
	copy(hist, t.histogram)
	avg := math.NaN()
	if t.plans > 0 {
		avg = float64(t.totalWins) / float64(t.plans)
	}
	return WinSummary{
		Histogram: hist,
		Plans:     t.plans,
		TotalWins: t.totalWins,
		Average:   avg,
	}
}
