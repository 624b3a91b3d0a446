package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erikrandall/csla/internal/record"
	"github.com/erikrandall/csla/internal/store"
	"github.com/erikrandall/csla/internal/trace"
)

type checker struct{ err error }

func (c checker) CheckIndex() error { return c.err }

func sampleResult() *Result {
	r := NewResult("run-1")
	r.Trace = []trace.Event{
		{Seq: 1, Origin: trace.OriginView, Kind: "reset", Index: -1, OldIndex: -1, Len: 2},
		{Seq: 2, Origin: trace.OriginSource, Kind: "item_added", Index: 3, OldIndex: 3, Len: 4},
		{Seq: 3, Origin: trace.OriginView, Kind: "item_added", Index: 2, OldIndex: 2, Len: 3},
		{Seq: 4, Origin: trace.OriginSource, Kind: "field_added", Index: -1, OldIndex: -1, Field: "size", Len: 4},
	}
	r.View = []store.ViewRow{
		{Position: 0, Base: 0, Item: record.Object{"name": record.String("ant"), "size": record.Int(1)}},
		{Position: 1, Base: 2, Item: record.Object{"name": record.String("asp"), "size": record.Null{}}},
	}
	return r
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	assertions := []Assertion{
		{Type: AssertViewEquals, Field: "name", Values: []any{"ant", "asp"}},
		{Type: AssertViewEquals, Field: "size", Values: []any{1, nil}},
		{Type: AssertTraceContains, Kind: "item_added", Origin: trace.OriginView, Index: intp(2)},
		{Type: AssertTraceContains, Kind: "field_added", Field: "size"},
		{Type: AssertTraceCount, Kind: "item_added", Count: 2},
		{Type: AssertTraceCount, Origin: trace.OriginSource, Count: 2},
		{Type: AssertTraceCount, Kind: "item_moved", Count: 0},
		{Type: AssertIndexConsistent},
		{Type: AssertViewLen, Count: 2},
	}
	assert.Empty(t, EvaluateAssertions(sampleResult(), assertions, checker{}))
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		view      IndexChecker
		want      string
	}{
		{"view values differ", Assertion{Type: AssertViewEquals, Field: "name", Values: []any{"ant"}}, checker{}, "Expected: name = [ant]"},
		{"null is not empty text", Assertion{Type: AssertViewEquals, Field: "size", Values: []any{1, ""}}, checker{}, "view_equals"},
		{"missing event", Assertion{Type: AssertTraceContains, Kind: "item_deleted"}, checker{}, "Actual: not found in trace"},
		{"wrong index", Assertion{Type: AssertTraceContains, Kind: "item_added", Origin: trace.OriginView, Index: intp(0)}, checker{}, "view item_added index=0"},
		{"wrong count", Assertion{Type: AssertTraceCount, Kind: "reset", Count: 3}, checker{}, "Actual: 1 occurrences"},
		{"corrupt index", Assertion{Type: AssertIndexConsistent}, checker{err: errors.New("entries 0 and 1 share base 2")}, "share base 2"},
		{"no view", Assertion{Type: AssertIndexConsistent}, nil, "requires a view"},
		{"wrong length", Assertion{Type: AssertViewLen, Count: 5}, checker{}, "Expected: 5 rows"},
		{"unknown type", Assertion{Type: "final_state"}, checker{}, `unknown assertion type "final_state"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion}, tt.view)
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertTraceCount,
		Expected: "1 occurrences of reset",
		Actual:   "0 occurrences",
		Trace:    sampleResult().Trace[:1],
	}
	assert.Equal(t,
		"Assertion failed: trace_count\n"+
			"  Expected: 1 occurrences of reset\n"+
			"  Actual: 0 occurrences\n"+
			"\nFull trace:\n"+
			"  0001 view reset index=-1 len=2\n",
		err.Error())
}
