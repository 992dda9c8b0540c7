package harness

import (
	"github.com/roach88/marktest/internal/match"
)

// UnitResult pairs a unit name with its verdict.
type UnitResult struct {
	Name    string        `json:"name"`
	Verdict match.Verdict `json:"verdict"`
}

// Report is the outcome of one harness run over a module.
type Report struct {
	// Module is the identifier the run was started with.
	Module string `json:"module"`

	// Total counts the units considered. Equals len(Results).
	Total int `json:"total"`

	// Passed counts Pass verdicts. Never exceeds Total.
	Passed int `json:"passed"`

	// Results holds one entry per unit in discovery order.
	Results []UnitResult `json:"results"`
}

// Failed returns the number of units that did not pass, misuse included.
func (r *Report) Failed() int {
	return r.Total - r.Passed
}

// Misused returns the number of Misuse verdicts.
func (r *Report) Misused() int {
	n := 0
	for _, res := range r.Results {
		if res.Verdict.Status == match.Misuse {
			n++
		}
	}
	return n
}

// OK reports whether every unit passed.
func (r *Report) OK() bool {
	return r.Passed == r.Total
}

// Aggregator accumulates verdicts into a Report.
type Aggregator struct {
	report *Report
}

// NewAggregator starts an empty report for module.
func NewAggregator(module string) *Aggregator {
	return &Aggregator{
		report: &Report{
			Module:  module,
			Results: []UnitResult{},
		},
	}
}

// Add records one unit's verdict.
func (a *Aggregator) Add(name string, v match.Verdict) {
	a.report.Total++
	if v.Passed() {
		a.report.Passed++
	}
	a.report.Results = append(a.report.Results, UnitResult{Name: name, Verdict: v})
}

// Report returns the accumulated report.
func (a *Aggregator) Report() *Report {
	return a.report
}
