package harness

import (
	"fmt"
	"strings"

	"github.com/erikrandall/csla/binding"
	"github.com/erikrandall/csla/internal/trace"
)

// AssertionError is returned when an assertion fails.
// It includes the full trace to help debug the failure.
type AssertionError struct {
	Type     string        // Assertion type for categorization
	Expected string        // Human-readable expected outcome
	Actual   string        // Human-readable actual outcome
	Trace    []trace.Event // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  %s\n", event.Text())
		}
	}
	return buf.String()
}

// IndexChecker verifies a view's index against a full rebuild.
type IndexChecker interface {
	CheckIndex() error
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The view is consulted by index_consistent only.
func EvaluateAssertions(result *Result, assertions []Assertion, view IndexChecker) []string {
	var errs []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertViewEquals:
			err = assertViewEquals(result, assertion)
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertIndexConsistent:
			if view == nil {
				err = fmt.Errorf("assertion[%d]: index_consistent requires a view", i)
			} else if cerr := view.CheckIndex(); cerr != nil {
				err = &AssertionError{
					Type:     AssertIndexConsistent,
					Expected: "index agrees with a full rebuild",
					Actual:   cerr.Error(),
				}
			}
		case AssertViewLen:
			if len(result.View) != assertion.Count {
				err = &AssertionError{
					Type:     AssertViewLen,
					Expected: fmt.Sprintf("%d rows", assertion.Count),
					Actual:   fmt.Sprintf("%d rows", len(result.View)),
					Trace:    result.Trace,
				}
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}

// assertViewEquals compares the field values of the view rows, in order.
func assertViewEquals(result *Result, assertion Assertion) error {
	actual := make([]any, len(result.View))
	for i, row := range result.View {
		actual[i] = row.Item.Get(assertion.Field)
	}

	equal := len(actual) == len(assertion.Values)
	for i := 0; equal && i < len(actual); i++ {
		equal = binding.CompareValues(actual[i], assertion.Values[i]) == 0 &&
			(actual[i] == nil) == (assertion.Values[i] == nil)
	}
	if equal {
		return nil
	}

	return &AssertionError{
		Type:     AssertViewEquals,
		Expected: fmt.Sprintf("%s = %v", assertion.Field, assertion.Values),
		Actual:   fmt.Sprintf("%s = %v", assertion.Field, actual),
		Trace:    result.Trace,
	}
}

// matchEvent reports whether e satisfies the assertion's kind, origin,
// index and field filters. Empty filters match anything.
func matchEvent(e trace.Event, assertion Assertion) bool {
	if assertion.Kind != "" && e.Kind != assertion.Kind {
		return false
	}
	if assertion.Origin != "" && e.Origin != assertion.Origin {
		return false
	}
	if assertion.Index != nil && e.Index != *assertion.Index {
		return false
	}
	if assertion.Field != "" && e.Field != assertion.Field {
		return false
	}
	return true
}

// assertTraceContains checks that at least one event matches.
func assertTraceContains(events []trace.Event, assertion Assertion) error {
	for _, e := range events {
		if matchEvent(e, assertion) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: describeMatch(assertion),
		Actual:   "not found in trace",
		Trace:    events,
	}
}

// assertTraceCount checks the number of matching events exactly.
func assertTraceCount(events []trace.Event, assertion Assertion) error {
	count := 0
	for _, e := range events {
		if matchEvent(e, assertion) {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, describeMatch(assertion)),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    events,
		}
	}
	return nil
}

func describeMatch(a Assertion) string {
	parts := []string{}
	if a.Origin != "" {
		parts = append(parts, a.Origin)
	}
	if a.Kind != "" {
		parts = append(parts, a.Kind)
	} else {
		parts = append(parts, "any event")
	}
	if a.Index != nil {
		parts = append(parts, fmt.Sprintf("index=%d", *a.Index))
	}
	if a.Field != "" {
		parts = append(parts, "field="+a.Field)
	}
	return strings.Join(parts, " ")
}
