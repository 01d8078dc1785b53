package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"go.viam.com/gapnav/obstaclemap"
)

var errNoClearances = errors.New("no admissible sub-goal was found")

// cycleReport accumulates the outcome of many obstacle map cycles.
type cycleReport struct {
	failures   int
	statuses   map[obstaclemap.Status]int
	clearances stats.Float64Data
	steps      stats.Float64Data
}

func newCycleReport() *cycleReport {
	return &cycleReport{statuses: map[obstaclemap.Status]int{}}
}

func (r *cycleReport) add(res *obstaclemap.SubGoalResult) {
	r.statuses[res.Status]++
	if res.Resolution != nil {
		r.steps = append(r.steps, float64(len(res.Resolution.Steps)))
	}
	if res.Status == obstaclemap.StatusFound {
		r.clearances = append(r.clearances, res.Clearance)
	}
}

func (r *cycleReport) addFailure() {
	r.failures++
}

func (r *cycleReport) cycles() int {
	n := r.failures
	for _, c := range r.statuses {
		n += c
	}
	return n
}

type clearanceSummary struct {
	Min, Max, Mean, Median float64
}

// clearanceSummary describes the clearances of the admissible sub-goals.
func (r *cycleReport) clearanceSummary() (clearanceSummary, error) {
	var sum clearanceSummary
	if len(r.clearances) == 0 {
		return sum, errNoClearances
	}
	var err error
	if sum.Min, err = stats.Min(r.clearances); err != nil {
		return sum, err
	}
	if sum.Max, err = stats.Max(r.clearances); err != nil {
		return sum, err
	}
	if sum.Mean, err = stats.Mean(r.clearances); err != nil {
		return sum, err
	}
	if sum.Median, err = stats.Median(r.clearances); err != nil {
		return sum, err
	}
	return sum, nil
}

// String renders the report as a table.
func (r *cycleReport) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRow(table.Row{"cycles", r.cycles()})
	t.AppendRow(table.Row{"failed", r.failures})
	for _, s := range []obstaclemap.Status{obstaclemap.StatusFound, obstaclemap.StatusNoGap, obstaclemap.StatusBlocked} {
		t.AppendRow(table.Row{s.String(), r.statuses[s]})
	}
	if maxSteps, err := stats.Max(r.steps); err == nil {
		t.AppendRow(table.Row{"max refinement steps", int(maxSteps)})
	}
	if sum, err := r.clearanceSummary(); err == nil {
		t.AppendRow(table.Row{"clearance min", fmt.Sprintf("%.3f", sum.Min)})
		t.AppendRow(table.Row{"clearance median", fmt.Sprintf("%.3f", sum.Median)})
		t.AppendRow(table.Row{"clearance mean", fmt.Sprintf("%.3f", sum.Mean)})
		t.AppendRow(table.Row{"clearance max", fmt.Sprintf("%.3f", sum.Max)})
	}
	return t.Render()
}

// resultTable renders a single sub-goal result.
func resultTable(res *obstaclemap.SubGoalResult) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRow(table.Row{"cycle", res.CycleID.String()})
	t.AppendRow(table.Row{"status", statusString(res.Status)})
	if res.Status == obstaclemap.StatusNoGap {
		return t.Render()
	}
	t.AppendRow(table.Row{"gap", fmt.Sprintf("#%d %s", res.GapIndex, res.Gap.String())})
	t.AppendRow(table.Row{"sub-goal", fmt.Sprintf("X:%.3f, Y:%.3f", res.SubGoal.X, res.SubGoal.Y)})
	t.AppendRow(table.Row{"clearance", fmt.Sprintf("%.3f", res.Clearance)})
	if res.Resolution != nil {
		t.AppendRow(table.Row{"refinement steps", len(res.Resolution.Steps)})
	}
	return t.Render()
}

// statusString colors a status for terminals; color is dropped when output is not a terminal.
func statusString(s obstaclemap.Status) string {
	switch s {
	case obstaclemap.StatusFound:
		return color.GreenString(s.String())
	case obstaclemap.StatusBlocked:
		return color.RedString(s.String())
	default:
		return color.YellowString(s.String())
	}
}
