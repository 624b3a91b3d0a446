package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const passingScenario = `name: ants
run_id: run-ants
source:
  - {name: ant}
  - {name: bee}
  - {name: asp}
steps:
  - op: apply_filter
    field: name
    value: a
assertions:
  - type: view_equals
    field: name
    values: [ant, asp]
  - type: index_consistent
`

const failingScenario = `name: wrong_len
run_id: run-wrong
source:
  - {name: ant}
steps:
  - op: apply_filter
    field: name
    value: z
assertions:
  - type: view_len
    count: 5
`

const antsGolden = `# trace
0001 view reset index=-1 len=2
# view
0 base=0 {"name":"ant"}
1 base=2 {"name":"asp"}
`

// isolateConfig keeps config files and FILTERVIEW_* variables of the host
// out of command tests.
func isolateConfig(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	for _, key := range []string{"FORMAT", "VERBOSE", "DATABASE", "LOG_LEVEL"} {
		t.Setenv("FILTERVIEW_"+key, "")
		os.Unsetenv("FILTERVIEW_" + key)
	}
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// execute runs the root command with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
