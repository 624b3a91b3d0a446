package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_Valid(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/prefix_filter.yaml")
	require.NoError(t, err)

	assert.Equal(t, "prefix_filter", scenario.Name)
	assert.Equal(t, []string{"name", "size"}, scenario.Fields)
	assert.Len(t, scenario.Source, 4)
	require.Len(t, scenario.Steps, 7)
	assert.Equal(t, OpApplyFilter, scenario.Steps[0].Op)
	assert.Equal(t, "A", scenario.Steps[0].Value)
	require.NotNil(t, scenario.Steps[1].Index)
	assert.Equal(t, 1, *scenario.Steps[1].Index)
	assert.Equal(t, map[string]any{"name": "ape", "size": 5}, scenario.Steps[1].Item)
	assert.Len(t, scenario.Assertions, 5)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			doc:     "name: [unclosed",
			wantErr: "failed to parse YAML",
		},
		{
			name: "unknown field rejected by schema",
			doc: `
name: x
source: []
steps: []
flow: []
`,
			wantErr: "invalid scenario",
		},
		{
			name: "insert without index",
			doc: `
name: x
source: []
steps:
  - op: source_insert
    item: {name: a}
`,
			wantErr: "steps[0]: index is required for source_insert",
		},
		{
			name: "append without item",
			doc: `
name: x
source: []
steps:
  - op: view_append
`,
			wantErr: "steps[0]: item is required for view_append",
		},
		{
			name: "find without field",
			doc: `
name: x
source: []
steps:
  - op: find
    value: a
`,
			wantErr: "steps[0]: field is required for find",
		},
		{
			name: "view_equals without field",
			doc: `
name: x
source: []
steps: []
assertions:
  - type: view_equals
    values: [a]
`,
			wantErr: "assertions[0]: field is required for view_equals",
		},
		{
			name: "unknown change kind",
			doc: `
name: x
source: []
steps: []
assertions:
  - type: trace_count
    kind: item_exploded
`,
			wantErr: "assertions[0]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_EveryOpPassesSchema(t *testing.T) {
	ops := []string{
		OpApplyFilter, OpRemoveFilter, OpRefresh, OpSourceReset, OpViewClear,
		OpAddNew, OpCancelNew, OpEndNew, OpRemoveSort,
	}
	for _, op := range ops {
		doc := "name: x\nsource: []\nsteps:\n  - op: " + op + "\n"
		_, err := ParseScenario([]byte(doc))
		assert.NoError(t, err, op)
	}
}

func TestLoadScenario_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: on_disk
source:
  - {name: ant}
steps:
  - op: apply_filter
    value: a
`), 0o644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "on_disk", scenario.Name)
	assert.Empty(t, scenario.Assertions)
}
