// Package cli implements the cobra command tree for taps.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/taps/internal/config"
	"github.com/hupe1980/taps/internal/logging"
	"github.com/hupe1980/taps/internal/transformer"
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// usageError marks err as a usage or configuration error (exit code 2).
func usageError(err error) error {
	return &ExitError{Code: 2, Err: err}
}

// Execute builds the command tree for the process arguments, runs it, prints
// any error to stderr and returns the exit code.
func Execute() int {
	cmd := NewRootCommand(os.Args[1:])

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}

		return 1
	}

	return 0
}

// NewRootCommand constructs the top-level command with all subcommands
// attached, using the built-in transformers. argv is the raw argument list;
// it is scanned for the selected transformer before flags are defined.
func NewRootCommand(argv []string) *cobra.Command {
	return newRootCommand(transformer.DefaultRegistry(), argv)
}

func newRootCommand(reg *transformer.Registry, argv []string) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "taps",
		Short: "Filter data items by size and hand them to a transformer",
		Long: `taps reads data items from YAML or JSON documents, keeps those whose
in-memory or serialized size falls within configured bounds, and passes the
kept items to a pluggable transformer (null, file, nats).

The transformer is chosen with --transformer; only the chosen transformer's
options are required.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return usageError(err)
			}

			logger := logging.Setup(cfg)

			if err := requireFlags(cmd.Flags(), cfg.Settings); err != nil {
				return usageError(err)
			}

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("configFile", cfg.ConfigFile),
				slog.String("transformer", cfg.Transformer),
				slog.String("filterType", cfg.FilterType),
			)

			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .taps.yaml in the working or user config directory)")
	pf.String("log-level", config.LogLevelInfo, "log level: debug, info, warn, error")
	pf.String("log-format", config.LogFormatText, "log format: text, json")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	cmd.AddCommand(
		newRunCommand(reg, argv),
		newWatchCommand(reg, argv),
		newTransformersCommand(reg),
		newVersionCommand(),
		newCompletionCommand(),
	)

	return cmd
}
