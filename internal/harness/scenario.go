package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/erikrandall/csla/binding"
	"github.com/erikrandall/csla/internal/compiler"
)

// Scenario describes a source collection, a sequence of operations on the
// source and on a filtered view over it, and assertions over the resulting
// notification trace and final view.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description,omitempty"`

	// RunID is an optional fixed run id. Defaults to DefaultRunID.
	RunID string `yaml:"run_id,omitempty"`

	// Fields publishes a schema on the source. Without it, record fields
	// resolve dynamically.
	Fields []string `yaml:"fields,omitempty"`

	// Source holds the initial records.
	Source []map[string]any `yaml:"source"`

	// Steps run in order after the view is created.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and view.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one operation on the source or the view.
type Step struct {
	Op string `yaml:"op"`

	// Field names the filter, sort, search or schema field.
	Field string `yaml:"field,omitempty"`

	// Value is the filter or search value. A list for any_prefix.
	Value any `yaml:"value,omitempty"`

	// Predicate selects the filter provider: prefix (default), contains,
	// equals or any_prefix.
	Predicate string `yaml:"predicate,omitempty"`

	// Index is a source position for source_* ops and a view position for
	// view_* ops.
	Index *int `yaml:"index,omitempty"`

	Item map[string]any `yaml:"item,omitempty"`

	// Direction is asc (default) or desc.
	Direction string `yaml:"direction,omitempty"`

	// ExpectError makes the step pass only when it fails with the named
	// error kind.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Step ops.
const (
	OpApplyFilter       = "apply_filter"
	OpRemoveFilter      = "remove_filter"
	OpRefresh           = "refresh"
	OpSourceAppend      = "source_append"
	OpSourceInsert      = "source_insert"
	OpSourceSet         = "source_set"
	OpSourceRemove      = "source_remove"
	OpSourceReset       = "source_reset"
	OpSourceResetItem   = "source_reset_item"
	OpSourceAddField    = "source_add_field"
	OpSourceRemoveField = "source_remove_field"
	OpViewAppend        = "view_append"
	OpViewInsert        = "view_insert"
	OpViewSet           = "view_set"
	OpViewRemove        = "view_remove"
	OpViewClear         = "view_clear"
	OpAddNew            = "add_new"
	OpCancelNew         = "cancel_new"
	OpEndNew            = "end_new"
	OpApplySort         = "apply_sort"
	OpRemoveSort        = "remove_sort"
	OpFind              = "find"
)

// Expected error kinds.
const (
	ErrKindUnsupported = "unsupported"
	ErrKindOutOfRange  = "out_of_range"
	ErrKindNoPending   = "no_pending"
	ErrKindAny         = "any"
)

// Assertion validates the trace or the final view.
type Assertion struct {
	// Type specifies the assertion type:
	// - "view_equals": Field values of the view rows, in order
	// - "trace_contains": An event with Kind (and Origin, Index, Field when set)
	// - "trace_count": Number of events with Kind and Origin (all when empty)
	// - "index_consistent": The view index agrees with a full rebuild
	// - "view_len": The view holds Count rows
	Type string `yaml:"type"`

	Field  string `yaml:"field,omitempty"`
	Values []any  `yaml:"values,omitempty"`
	Origin string `yaml:"origin,omitempty"`
	Kind   string `yaml:"kind,omitempty"`
	Index  *int   `yaml:"index,omitempty"`
	Count  int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertViewEquals      = "view_equals"
	AssertTraceContains   = "trace_contains"
	AssertTraceCount      = "trace_count"
	AssertIndexConsistent = "index_consistent"
	AssertViewLen         = "view_len"
)

// LoadScenario reads, schema-checks and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses a scenario document.
//
// The document is first validated against the CUE scenario schema, then
// decoded with strict field checking, then checked for per-op requirements.
func ParseScenario(data []byte) (*Scenario, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := compiler.ValidateScenario(raw); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks what the schema cannot: which fields each op and
// assertion type needs.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, step Step) error {
	switch step.Op {
	case OpSourceInsert, OpSourceSet, OpViewInsert, OpViewSet:
		if step.Index == nil {
			return fmt.Errorf("steps[%d]: index is required for %s", i, step.Op)
		}
		if step.Item == nil {
			return fmt.Errorf("steps[%d]: item is required for %s", i, step.Op)
		}
	case OpSourceRemove, OpSourceResetItem, OpViewRemove:
		if step.Index == nil {
			return fmt.Errorf("steps[%d]: index is required for %s", i, step.Op)
		}
	case OpSourceAppend, OpViewAppend:
		if step.Item == nil {
			return fmt.Errorf("steps[%d]: item is required for %s", i, step.Op)
		}
	case OpSourceAddField, OpSourceRemoveField, OpApplySort, OpFind:
		if step.Field == "" {
			return fmt.Errorf("steps[%d]: field is required for %s", i, step.Op)
		}
	case OpApplyFilter, OpRemoveFilter, OpRefresh, OpSourceReset, OpViewClear,
		OpAddNew, OpCancelNew, OpEndNew, OpRemoveSort:
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
	}
	return nil
}

func validateAssertion(i int, a Assertion) error {
	switch a.Type {
	case AssertViewEquals:
		if a.Field == "" {
			return fmt.Errorf("assertions[%d]: field is required for view_equals", i)
		}
	case AssertTraceContains:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_contains", i)
		}
	case AssertTraceCount, AssertIndexConsistent, AssertViewLen:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
	}

	if a.Kind != "" {
		if _, err := binding.ParseChangeKind(a.Kind); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", i)
	}
	return nil
}
