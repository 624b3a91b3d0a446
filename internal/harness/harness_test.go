package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erikrandall/csla/internal/record"
	"github.com/erikrandall/csla/internal/store"
	"github.com/erikrandall/csla/internal/trace"
)

func intp(i int) *int { return &i }

func animals() []map[string]any {
	return []map[string]any{
		{"name": "ant"},
		{"name": "bee"},
		{"name": "asp"},
	}
}

func TestRun_FilterAndAppend(t *testing.T) {
	scenario := &Scenario{
		Name:   "filter_and_append",
		Fields: []string{"name"},
		Source: animals(),
		Steps: []Step{
			{Op: OpApplyFilter, Field: "name", Value: "a"},
			{Op: OpSourceAppend, Item: map[string]any{"name": "axe"}},
		},
		Assertions: []Assertion{
			{Type: AssertViewEquals, Field: "name", Values: []any{"ant", "asp", "axe"}},
			{Type: AssertIndexConsistent},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, DefaultRunID, result.RunID)
	assert.Equal(t, "name=a", result.Filter)
	assert.Equal(t, 4, result.SourceLen)
	assert.Equal(t, []store.ViewRow{
		{Position: 0, Base: 0, Item: record.Object{"name": record.String("ant")}},
		{Position: 1, Base: 2, Item: record.Object{"name": record.String("asp")}},
		{Position: 2, Base: 3, Item: record.Object{"name": record.String("axe")}},
	}, result.View)

	// Source notifications precede the view notifications they cause.
	require.Len(t, result.Trace, 3)
	assert.Equal(t, trace.OriginView, result.Trace[0].Origin)
	assert.Equal(t, trace.OriginSource, result.Trace[1].Origin)
	assert.Equal(t, trace.OriginView, result.Trace[2].Origin)
}

func TestRun_UnresolvedFieldFiltersWholeRecord(t *testing.T) {
	scenario := &Scenario{
		Name:   "whole_record",
		Fields: []string{"name"},
		Source: animals(),
		Steps:  []Step{{Op: OpApplyFilter, Field: "colour", Value: `{"name":"b`}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.Len(t, result.View, 1)
	assert.Equal(t, "bee", result.View[0].Item.Get("name"))
	assert.Equal(t, `*={"name":"b`, result.Filter)
}

func TestRun_ExpectedErrors(t *testing.T) {
	tests := []struct {
		name    string
		step    Step
		wantErr string
	}{
		{"expected and raised", Step{Op: OpViewRemove, Index: intp(7), ExpectError: ErrKindOutOfRange}, ""},
		{"expected any", Step{Op: OpCancelNew, ExpectError: ErrKindAny}, ""},
		{"expected but none", Step{Op: OpSourceReset, ExpectError: ErrKindAny}, "expected any error, got none"},
		{"wrong kind", Step{Op: OpCancelNew, ExpectError: ErrKindOutOfRange}, "expected out_of_range error, got"},
		{"unexpected", Step{Op: OpSourceRemove, Index: intp(5)}, "steps[0] source_remove"},
		{"unknown schema field", Step{Op: OpSourceRemoveField, Field: "colour"}, "steps[0] source_remove_field"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Run(&Scenario{Name: "errs", Source: animals(), Steps: []Step{tt.step}})
			require.NoError(t, err)
			if tt.wantErr == "" {
				assert.True(t, result.Pass, "errors: %v", result.Errors)
				return
			}
			assert.False(t, result.Pass)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], tt.wantErr)
		})
	}
}

func TestRun_AddNewBlank(t *testing.T) {
	scenario := &Scenario{
		Name:   "add_new",
		Fields: []string{"name", "size"},
		Source: animals(),
		Steps: []Step{
			{Op: OpAddNew},
			{Op: OpEndNew},
			{Op: OpCancelNew, ExpectError: ErrKindNoPending},
		},
		Assertions: []Assertion{{Type: AssertViewLen, Count: 4}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, record.Object{"name": record.Null{}, "size": record.Null{}}, result.View[3].Item)
}

func TestRun_FindRecordsViewPositions(t *testing.T) {
	scenario := &Scenario{
		Name:   "find",
		Source: animals(),
		Steps: []Step{
			{Op: OpApplyFilter, Field: "name", Value: "a"},
			{Op: OpFind, Field: "name", Value: "asp"},
			{Op: OpFind, Field: "name", Value: "bee"},
			{Op: OpFind, Field: "name", Value: "owl"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []int{1, -1, -1}, result.Finds)
}

func TestRun_RunIDs(t *testing.T) {
	fixed := &Scenario{Name: "ids", RunID: "from-scenario", Source: animals()}
	result, err := Run(fixed, WithRunIDGenerator(trace.NewFixedGenerator("from-generator")))
	require.NoError(t, err)
	assert.Equal(t, "from-scenario", result.RunID)

	result, err = Run(&Scenario{Name: "ids", Source: animals()},
		WithRunIDGenerator(trace.NewFixedGenerator("from-generator")))
	require.NoError(t, err)
	assert.Equal(t, "from-generator", result.RunID)
}

func TestRun_DigestIgnoresRunID(t *testing.T) {
	steps := []Step{{Op: OpApplyFilter, Field: "name", Value: "a"}}

	first, err := Run(&Scenario{Name: "d", RunID: "run-a", Source: animals(), Steps: steps})
	require.NoError(t, err)
	second, err := Run(&Scenario{Name: "d", RunID: "run-b", Source: animals(), Steps: steps})
	require.NoError(t, err)
	assert.Equal(t, first.Digest, second.Digest)

	unfiltered, err := Run(&Scenario{Name: "d", Source: animals()})
	require.NoError(t, err)
	assert.NotEqual(t, first.Digest, unfiltered.Digest)
}

func TestRun_InvalidSourceRecord(t *testing.T) {
	_, err := Run(&Scenario{Name: "bad", Source: []map[string]any{{"ratio": 0.5}}})
	assert.ErrorContains(t, err, "source[0]")
}

func TestRun_PersistsToStore(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	scenario, err := LoadScenario("testdata/scenarios/prefix_filter.yaml")
	require.NoError(t, err)

	result, err := Run(scenario, WithStore(st), WithRunIDGenerator(trace.NewFixedGenerator("run-1")))
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	ctx := context.Background()
	run, err := st.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, store.Run{
		ID: "run-1", Scenario: "prefix_filter", Pass: true, Filter: "name=A", SourceLen: 4, Digest: result.Digest,
	}, run)
	assert.Len(t, run.Digest, 64)

	events, err := st.ReadEvents(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, result.Trace, events)

	view, err := st.ReadView(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, view, 2)
	assert.True(t, view[0].Item.Equal(result.View[0].Item))
	assert.Equal(t, 1, view[0].Base)

	seq, err := st.GetLastSeq(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(9), seq)
}
