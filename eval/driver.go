package eval

import (
	"fmt"
	"io"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/plan-eval/plan-eval/eval/archive"
	"github.com/plan-eval/plan-eval/eval/scores"
	"github.com/plan-eval/plan-eval/eval/sink"
)

// State is a Driver lifecycle state.
type State string

const (
	StateLoadingBaseline State = "loading_baseline"
	StateStreamingPlans  State = "streaming_plans"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// Driver owns a full evaluation run. It loads the baseline exactly once,
// then consumes the plan stream plan by plan: decode, resolve onto the unit
// collection, tabulate, tally, and hand the result to the sink. The unit
// collection is owned by the driver for the run's duration and mutated in
// place as plans apply.
type Driver struct {
	Config   Config
	Registry *Registry
	Tracker  *Tracker

	out   sink.Sink
	arc   *archive.Writer
	state State
	line  int
}

// NewDriver validates cfg and returns a driver emitting to out.
func NewDriver(cfg Config, out sink.Sink) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Driver{
		Config:  cfg,
		Tracker: NewTracker(),
		out:     out,
		state:   StateLoadingBaseline,
	}, nil
}

// State reports the driver's current lifecycle state.
func (d *Driver) State() State { return d.state }

// LoadBaseline reads the baseline source and builds the unit registry. When
// a district maximum is configured, every baseline assignment is validated
// against it here, before any plan is processed. Failure is terminal.
func (d *Driver) LoadBaseline(r io.Reader) error {
	if d.state != StateLoadingBaseline {
		return fmt.Errorf("baseline already loaded (state %s)", d.state)
	}
	reg, err := LoadBaseline(r, d.Config.StrictBaseline)
	if err != nil {
		d.state = StateFailed
		return err
	}
	if d.Config.MaxDistrict > 0 {
		for _, u := range reg.Units {
			if u.Assignment > d.Config.MaxDistrict {
				d.state = StateFailed
				key := UnitKey{County: u.County, Precinct: u.Precinct}
				return &IndexRangeError{District: u.Assignment, Max: d.Config.MaxDistrict, Unit: key.String()}
			}
		}
	}
	d.Registry = reg
	d.state = StateStreamingPlans
	return nil
}

// ArchiveTo records every resolved assignment to w as a compressed archive
// over the registry's identifiers. It must be called after LoadBaseline and
// before Stream.
func (d *Driver) ArchiveTo(w io.Writer, window int) error {
	if d.state != StateStreamingPlans {
		return fmt.Errorf("archive destination requires a loaded baseline (state %s)", d.state)
	}
	d.arc = archive.NewWriter(w, d.Registry.Identifiers(), window)
	return nil
}

// Stream consumes the plan source to exhaustion. The configured number of
// leading lines are skipped unconditionally as metadata; every later line
// must decode into a plan. The first decode failure is terminal: plans
// already processed remain reported, nothing is rolled back.
func (d *Driver) Stream(src LineSource) error {
	if d.state != StateStreamingPlans {
		return fmt.Errorf("streaming requires a loaded baseline (state %s)", d.state)
	}
	for {
		line, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			d.state = StateFailed
			return fmt.Errorf("reading plan stream: %w", err)
		}
		d.line++
		if d.line <= d.Config.SkipRecords {
			logrus.Debugf("skipping metadata line %d", d.line)
			continue
		}
		if err := d.process(line); err != nil {
			d.state = StateFailed
			return err
		}
	}
	if d.arc != nil {
		if err := d.arc.Close(); err != nil {
			d.state = StateFailed
			return fmt.Errorf("closing archive: %w", err)
		}
	}
	d.state = StateDone
	logrus.Infof("run complete: %d plans processed", d.Tracker.Plans())
	return nil
}

// Run executes the whole lifecycle against the two sources.
func (d *Driver) Run(baseline io.Reader, plans LineSource) error {
	if err := d.LoadBaseline(baseline); err != nil {
		return err
	}
	return d.Stream(plans)
}

func (d *Driver) process(line []byte) error {
	plan, err := DecodePlan(line, d.line)
	if err != nil {
		return err
	}
	Resolve(d.Registry, plan)
	totals, err := Tabulate(d.Registry, d.Config)
	if err != nil {
		return err
	}
	won := CountWins(totals)
	d.Tracker.Record(won)
	if d.arc != nil {
		if err := d.arc.Append(d.currentAssignment()); err != nil {
			return fmt.Errorf("archiving plan %d: %w", d.Tracker.Plans(), err)
		}
	}
	return d.emit(plan, totals, won)
}

// emit reports one processed plan to the sink: the full current histogram
// plus the plan's own result and the running average.
func (d *Driver) emit(plan *PlanRecord, totals *DistrictTotals, won int) error {
	summary := d.Tracker.Snapshot()
	districts := make([]sink.DistrictVotes, totals.Districts())
	for i := range districts {
		districts[i] = sink.DistrictVotes{
			District:  i,
			Election1: totals.Election1[i],
			Election2: totals.Election2[i],
			Won:       totals.Election1[i] > totals.Election2[i],
		}
	}
	tally := sink.PlanTally{
		Seq:       summary.Plans,
		Name:      plan.Name,
		Weight:    plan.Weight,
		Won:       won,
		Districts: districts,
		Histogram: summary.Histogram,
		Plans:     summary.Plans,
		Average:   summary.Average,
		Scores:    scores.Summary(totals.Election1, totals.Election2, d.Config.CompetitiveMargin),
	}
	if err := d.out.Emit(tally); err != nil {
		return fmt.Errorf("emitting plan %d: %w", summary.Plans, err)
	}
	return nil
}

// currentAssignment snapshots the registry's live assignments for archiving.
func (d *Driver) currentAssignment() map[string]string {
	assignment := make(map[string]string, d.Registry.Len())
	for _, u := range d.Registry.Units {
		key := UnitKey{County: u.County, Precinct: u.Precinct}
		assignment[key.String()] = strconv.Itoa(u.Assignment)
	}
	return assignment
}
