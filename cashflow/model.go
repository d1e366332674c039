// Package cashflow defines the uniform leaf computation contract every
// revenue, expense, financing, and valuation component implements
// (spec.md §4.3), plus a small registry the orchestrator walks to build its
// dependency graph. Property-specific math lives in the concrete models
// here; the orchestrator never inspects it.
package cashflow

import (
	"performa/model"
)

// Context is the read-only view a Model receives when computed: the
// Timeline and Settings for the run, plus the outputs any earlier pass
// already committed. A Model must never read the ledger of its own pass —
// only Context, so purity within a pass is mechanically enforced by the
// orchestrator never handing a model anything else.
type Context struct {
	Timeline model.Timeline
	Settings model.Settings

	// Outputs holds every named series produced by models in strictly
	// earlier passes, keyed by the producing model's ID then output name.
	Outputs map[string]map[string]*model.CashFlowSeries
}

// Output looks up a named series produced by modelID in an earlier pass.
// ok is false if modelID hasn't run yet or never produced that name.
func (c Context) Output(modelID, name string) (*model.CashFlowSeries, bool) {
	outputs, ok := c.Outputs[modelID]
	if !ok {
		return nil, false
	}
	s, ok := outputs[name]
	return s, ok
}

// Posting pairs a named output series with the ledger metadata the
// orchestrator posts it under. A Model never writes to the ledger
// directly — it only declares postings; the orchestrator decides how they
// become TransactionRecords (spec.md §4.3's post-condition).
type Posting struct {
	Name   string
	Series *model.CashFlowSeries
	Meta   model.PostingMeta
}

// Model is the uniform leaf contract of spec.md §4.3: given a Context, it
// produces one or more named CashFlowSeries along with the metadata that
// turns each into ledger postings.
type Model interface {
	// ID is the model's stable identity; it is what Dependencies refers to
	// and the lexicographic tie-break within a pass sorts on.
	ID() string

	// Dependencies returns the IDs of every other model this one reads
	// outputs from. The orchestrator uses this to build the pass graph;
	// a cycle among Dependencies is a DependencyCycleError.
	Dependencies() []string

	// Pure reports whether this model may run concurrently with its
	// pass-mates. A pure model reads only Context — never any process-wide
	// mutable state — so concurrent execution within a pass is safe.
	Pure() bool

	// Compute runs the model and returns its postings. Compute must not
	// mutate ctx or anything reachable from it.
	Compute(ctx Context) ([]Posting, error)
}
