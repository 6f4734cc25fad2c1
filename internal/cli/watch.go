package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/taps/internal/items"
	"github.com/hupe1980/taps/internal/logging"
	"github.com/hupe1980/taps/internal/pipeline"
	"github.com/hupe1980/taps/internal/transformer"
	"github.com/hupe1980/taps/internal/watch"
)

func newWatchCommand(reg *transformer.Registry, argv []string) *cobra.Command {
	opts := &runOptions{}

	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch FILES...",
		Short: "Re-run the pipeline whenever input files change",
		Long: `Watch runs the pipeline once and then again every time one of the given
files, or a file below one of the given directories, changes.

Changes are debounced. Each run prints how many items were kept and
dropped, and how item outcomes changed since the previous run. The report
is rewritten to --output on every run when it is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inferFormat(cmd, opts)

			return runWatch(cmd, reg, args, debounce, opts)
		},
	}

	if err := registerPipelineFlags(cmd, reg, argv, opts); err != nil {
		panic(fmt.Sprintf("registering watch flags: %v", err))
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "quiet period before re-running after a change")

	return cmd
}

func runWatch(cmd *cobra.Command, reg *transformer.Registry, paths []string, debounce time.Duration, opts *runOptions) error {
	if _, err := items.Expand(paths...); err != nil {
		return usageError(err)
	}

	wopts := watch.DefaultOptions()
	wopts.Paths = paths
	wopts.Debounce = debounce
	wopts.Logger = logging.FromContext(cmd.Context())
	wopts.Out = cmd.ErrOrStderr()

	for _, p := range []string{opts.output, opts.metricsFile} {
		if p != "" {
			wopts.Ignore = append(wopts.Ignore, p)
		}
	}

	return watch.Run(cmd.Context(), wopts, func(ctx context.Context) (*watch.RunResult, error) {
		report, err := runPipeline(ctx, reg, nil, paths, opts)
		if err != nil {
			return nil, err
		}

		if opts.output != "" {
			if err := writeReport(cmd, report, opts); err != nil {
				return nil, err
			}
		}

		return resultOf(report), nil
	})
}

func resultOf(report *pipeline.Report) *watch.RunResult {
	outcomes := make(map[string]string, len(report.Entries))
	for _, e := range report.Entries {
		outcomes[e.ID] = string(e.Outcome)
	}

	return &watch.RunResult{
		Kept:     report.Kept,
		Dropped:  report.Dropped,
		Outcomes: outcomes,
	}
}
