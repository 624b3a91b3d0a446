package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/erikrandall/csla/internal/harness"
	"github.com/erikrandall/csla/internal/store"
	"github.com/erikrandall/csla/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions

	// RunIDs overrides the run id generator (for testing).
	// If nil, defaults to trace.UUIDv7Generator.
	RunIDs trace.RunIDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run one scenario and print its trace",
		Long: `Run a scenario file against a filtered view and print the recorded
trace, the final view and any failures.

Scenarios without a run_id get a fresh UUIDv7. With --db the run, its
trace and its final view are stored for the trace command.

Examples:
  filterview run ./scenarios/prefix_filter.yaml
  filterview run --db ./runs.db ./scenarios/prefix_filter.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&rootOpts.Database, "db", "", "path to SQLite database to record the run in")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	logger := opts.newLogger(cmd.ErrOrStderr())
	formatter := opts.formatter(cmd)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		if formatter.JSON() {
			_ = formatter.Error(ErrCodeLoad, err.Error(), path)
		}
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = trace.UUIDv7Generator{}
	}
	runOpts := []harness.Option{
		harness.WithLogger(logger),
		harness.WithRunIDGenerator(runIDs),
	}

	if opts.Database != "" {
		logger.Info("opening database", "path", opts.Database)
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		runOpts = append(runOpts, harness.WithStore(st))
	}

	logger.Info("running scenario", "name", scenario.Name, "steps", len(scenario.Steps))
	result, err := harness.Run(scenario, runOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}
	logger.Info("scenario finished", "run_id", result.RunID, "pass", result.Pass, "events", len(result.Trace))

	if formatter.JSON() {
		resp := CLIResponse{Status: "ok", Data: result, RunID: result.RunID}
		if !result.Pass {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeFailed, Message: "scenario failed", Details: result.Errors}
		}
		if err := formatter.Respond(resp); err != nil {
			return err
		}
	} else {
		writeRunText(cmd, scenario.Name, result, logger)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}
	return nil
}

func writeRunText(cmd *cobra.Command, name string, result *harness.Result, logger *slog.Logger) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "run %s (%s)\n", result.RunID, name)
	if _, err := w.Write(harness.Render(result)); err != nil {
		logger.Error("write output", "error", err)
	}
	if result.Pass {
		fmt.Fprintln(w, "✓ PASS")
		return
	}
	fmt.Fprintln(w, "✗ FAIL")
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}
