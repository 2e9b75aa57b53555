// Package sink carries tabulation results to their destinations. The
// evaluation core hands every processed plan to a Sink in processing order;
// implementations render to a console, append to JSONL archives, or persist
// to SQLite. Sinks hold no evaluation logic of their own.
package sink

import (
	"fmt"
	"io"

	"github.com/buger/goterm"
)

// DistrictVotes is one district's aggregated totals within a single plan.
type DistrictVotes struct {
	District  int  `json:"district"`
	Election1 int  `json:"election_1"`
	Election2 int  `json:"election_2"`
	Won       bool `json:"won"`
}

// PlanTally is everything a sink receives for one processed plan: the plan's
// own result plus the run-wide running state at the moment it finished.
// Average is always finite here, tallies are only emitted once at least one
// plan has been recorded.
type PlanTally struct {
	Seq       int                `json:"seq"`
	Name      string             `json:"name,omitempty"`
	Weight    float64            `json:"weight"`
	Won       int                `json:"won"`
	Districts []DistrictVotes    `json:"districts"`
	Histogram []int              `json:"histogram"`
	Plans     int                `json:"plans"`
	Average   float64            `json:"average"`
	Scores    map[string]float64 `json:"scores,omitempty"`
}

// Sink receives one PlanTally per successfully processed plan, in processing
// order. Close flushes and releases whatever the sink holds open.
type Sink interface {
	Emit(t PlanTally) error
	Close() error
}

// Multi fans each tally out to every member sink in order.
type Multi []Sink

// Emit forwards t to each sink, stopping at the first failure.
func (m Multi) Emit(t PlanTally) error {
	for _, s := range m {
		if err := s.Emit(t); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every member sink and returns the first failure.
func (m Multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ConsoleSink renders the running tally as exactly two lines per plan: the
// full win histogram, then a summary with the plan's win count, the
// cumulative plan count, and the running average wins per plan.
type ConsoleSink struct {
	w     io.Writer
	color bool
}

// NewConsoleSink writes tallies to w, colorized when color is set.
func NewConsoleSink(w io.Writer, color bool) *ConsoleSink {
	return &ConsoleSink{w: w, color: color}
}

// Emit writes the histogram line and the summary line for t.
func (s *ConsoleSink) Emit(t PlanTally) error {
	hist := fmt.Sprintf("wins %v", t.Histogram)
	summary := fmt.Sprintf("plan %d: won=%d avg=%.4f", t.Plans, t.Won, t.Average)
	if s.color {
		hist = goterm.Color(hist, goterm.CYAN)
		summary = goterm.Color(goterm.Bold(summary), goterm.GREEN)
	}
	if _, err := fmt.Fprintln(s.w, hist); err != nil {
		return err
	}
	_, err := fmt.Fprintln(s.w, summary)
	return err
}

// Close is a no-op; the console writer is not owned by the sink.
func (s *ConsoleSink) Close() error { return nil }
