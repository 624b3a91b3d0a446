package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/erikrandall/csla/internal/config"
)

// RootOptions holds global flags for all commands. After the root's
// pre-run the fields hold the merged configuration.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	LogLevel   string

	// Database is set by the --db flag of run and trace, or by config.
	Database string
}

// NewRootCommand creates the root command for the filterview CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "filterview",
		Short: "filterview - live filtered views over observable lists",
		Long: `Run scenarios against a live filtered view and its source list,
record the change notifications both emit, and inspect recorded runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(opts, cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default filterview.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

// loadConfig merges flags over env, config file and defaults, and stores
// the result back into opts.
func loadConfig(opts *RootOptions, cmd *cobra.Command) error {
	loader := config.NewLoader()
	if opts.ConfigFile != "" {
		loader.SetConfigFile(opts.ConfigFile)
	}
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return WrapExitError(ExitCommandError, "failed to bind flags", err)
	}

	cfg, err := loader.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	opts.Format = cfg.Format
	opts.Verbose = cfg.Verbose
	opts.LogLevel = cfg.LogLevel
	opts.Database = cfg.Database
	return nil
}

// config returns the options as a config value.
func (o *RootOptions) config() *config.Config {
	return &config.Config{
		Format:   o.Format,
		Verbose:  o.Verbose,
		Database: o.Database,
		LogLevel: o.LogLevel,
	}
}

// newLogger builds the command logger: a text handler on w at the
// configured level.
func (o *RootOptions) newLogger(w io.Writer) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: o.config().Level(),
	})
	return slog.New(handler)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
