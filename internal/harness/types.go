package harness

import (
	"github.com/erikrandall/csla/internal/store"
	"github.com/erikrandall/csla/internal/trace"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step behaved as expected and every assertion
	// held.
	Pass bool `json:"pass"`

	RunID string `json:"run_id"`

	// Trace holds source and view notifications in seq order.
	Trace []trace.Event `json:"trace"`

	// View is the final view snapshot.
	View []store.ViewRow `json:"view"`

	// Errors contains step and assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Finds holds the view position returned by each find step.
	Finds []int `json:"finds,omitempty"`

	// Filter describes the criterion active at the end, "" when unfiltered.
	Filter string `json:"filter,omitempty"`

	SourceLen int `json:"source_len"`

	// Digest is the content-addressed identity of Trace; equal for runs
	// that recorded the same notifications.
	Digest string `json:"digest"`
}

// NewResult creates a new passing result.
func NewResult(runID string) *Result {
	return &Result{
		Pass:   true,
		RunID:  runID,
		Trace:  []trace.Event{},
		View:   []store.ViewRow{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Run returns the summary row persisted for this result.
func (r *Result) Run(scenario string) store.Run {
	return store.Run{
		ID:        r.RunID,
		Scenario:  scenario,
		Pass:      r.Pass,
		Filter:    r.Filter,
		SourceLen: r.SourceLen,
		Digest:    r.Digest,
	}
}
