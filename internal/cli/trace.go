package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/erikrandall/csla/internal/store"
	"github.com/erikrandall/csla/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	RunID  string
	Origin string // optional - "source" or "view"
}

// TraceResult is one recorded run with its trace and final view.
type TraceResult struct {
	Run    store.Run       `json:"run"`
	Events []trace.Event   `json:"events"`
	View   []store.ViewRow `json:"view"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded runs",
		Long: `Inspect runs recorded by "filterview run --db".

Without --run, lists every recorded run. With --run, prints that run's
trace in seq order followed by its final view.

Examples:
  filterview trace --db ./runs.db
  filterview trace --db ./runs.db --run 0192f0c1-... --origin view
  filterview trace --db ./runs.db --run 0192f0c1-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&rootOpts.Database, "db", "", "path to SQLite database (required unless configured)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to print")
	cmd.Flags().StringVar(&opts.Origin, "origin", "", "only events from this origin (source|view)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	if opts.Database == "" {
		return NewExitError(ExitCommandError, "database path required (--db or FILTERVIEW_DATABASE)")
	}
	switch opts.Origin {
	case "", trace.OriginSource, trace.OriginView:
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid origin %q: must be source or view", opts.Origin))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	formatter := opts.formatter(cmd)
	if opts.RunID == "" {
		return listRuns(ctx, st, formatter)
	}

	result, err := loadTrace(ctx, st, opts.RunID, opts.Origin)
	if errors.Is(err, store.ErrRunNotFound) {
		if formatter.JSON() {
			_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		}
		return WrapExitError(ExitCommandError, "run not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	if formatter.JSON() {
		return formatter.Respond(CLIResponse{Status: "ok", Data: result, RunID: result.Run.ID})
	}
	writeTraceText(cmd.OutOrStdout(), result)
	return nil
}

func listRuns(ctx context.Context, st *store.Store, formatter *OutputFormatter) error {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if formatter.JSON() {
		return formatter.Respond(CLIResponse{Status: "ok", Data: runs})
	}

	w := formatter.Writer
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s %s %s source_len=%d%s\n", r.ID, passMark(r.Pass), r.Scenario, r.SourceLen, filterSuffix(r.Filter))
	}
	return nil
}

func loadTrace(ctx context.Context, st *store.Store, runID, origin string) (TraceResult, error) {
	run, err := st.ReadRun(ctx, runID)
	if err != nil {
		return TraceResult{}, err
	}
	events, err := st.ReadEvents(ctx, runID)
	if err != nil {
		return TraceResult{}, err
	}
	if origin != "" {
		kept := events[:0]
		for _, e := range events {
			if e.Origin == origin {
				kept = append(kept, e)
			}
		}
		events = kept
	}
	view, err := st.ReadView(ctx, runID)
	if err != nil {
		return TraceResult{}, err
	}
	return TraceResult{Run: run, Events: events, View: view}, nil
}

func writeTraceText(w io.Writer, result TraceResult) {
	r := result.Run
	fmt.Fprintf(w, "run %s %s %s source_len=%d%s\n", r.ID, passMark(r.Pass), r.Scenario, r.SourceLen, filterSuffix(r.Filter))
	if r.Digest != "" {
		fmt.Fprintf(w, "digest %s\n", r.Digest)
	}
	fmt.Fprintln(w, "# trace")
	fmt.Fprint(w, trace.Text(result.Events))
	fmt.Fprintln(w, "# view")
	for _, row := range result.View {
		fmt.Fprintf(w, "%d base=%d %s\n", row.Position, row.Base, row.Item.String())
	}
}

func passMark(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

func filterSuffix(filter string) string {
	if filter == "" {
		return ""
	}
	return " filter=" + filter
}
