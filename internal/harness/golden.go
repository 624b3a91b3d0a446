package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/erikrandall/csla/internal/trace"
)

// Render renders a result as golden text: the trace, one line per event,
// then the view, one line per row, then the find results if any. Run ids
// are left out so traces of different runs compare equal.
//
//	# trace
//	0001 view reset index=-1 len=2
//	# view
//	0 base=0 {"name":"ant"}
func Render(result *Result) []byte {
	var b strings.Builder

	b.WriteString("# trace\n")
	b.WriteString(trace.Text(result.Trace))

	b.WriteString("# view\n")
	for _, row := range result.View {
		fmt.Fprintf(&b, "%d base=%d %s\n", row.Position, row.Base, row.Item.String())
	}

	if len(result.Finds) > 0 {
		b.WriteString("# finds\n")
		for _, pos := range result.Finds {
			fmt.Fprintf(&b, "%d\n", pos)
		}
	}
	return []byte(b.String())
}

// RunWithGolden executes a scenario and compares its rendering against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an already computed result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Render(result))
}
