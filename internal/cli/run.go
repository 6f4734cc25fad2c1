package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hupe1980/taps/internal/config"
	"github.com/hupe1980/taps/internal/items"
	"github.com/hupe1980/taps/internal/logging"
	"github.com/hupe1980/taps/internal/output"
	"github.com/hupe1980/taps/internal/pipeline"
	"github.com/hupe1980/taps/internal/transformer"
)

func newRunCommand(reg *transformer.Registry, argv []string) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [FILES...]",
		Short: "Filter items by size and transform the kept ones",
		Long: `Run reads items from the given YAML or JSON files or directories (stdin
when none or "-" is given), applies the size filter selected by --filter-type and hands
every kept item to the transformer selected by --transformer.

A report listing each item's outcome is written to stdout or --output.
Without --format the report format follows the --output extension, falling
back to YAML.`,
		Example: `  taps run items.yaml --filter-type object-size --filter-max-size 4096
  taps run items.yaml --transformer file --file-dir ./out
  cat items.json | taps run --filter-type pickle-size --filter-min-size 64 --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inferFormat(cmd, opts)

			report, err := runPipeline(cmd.Context(), reg, cmd.InOrStdin(), args, opts)
			if err != nil {
				return err
			}

			return writeReport(cmd, report, opts)
		},
	}

	if err := registerPipelineFlags(cmd, reg, argv, opts); err != nil {
		panic(fmt.Sprintf("registering run flags: %v", err))
	}

	return cmd
}

// runPipeline resolves the configured filter and transformer, loads the
// items from paths and runs them through the pipeline.
func runPipeline(ctx context.Context, reg *transformer.Registry, stdin io.Reader, paths []string, opts *runOptions) (*pipeline.Report, error) {
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	if _, err := output.DefaultRegistry().Serializer(opts.format); err != nil {
		return nil, usageError(err)
	}

	fcfg := cfg.FilterConfig()
	if fcfg.Inverted() {
		logger.Warn("filter minimum exceeds maximum; every item will be dropped",
			slog.Int("min", fcfg.MinSize),
			slog.Float64("max", fcfg.MaxSize),
		)
	}

	choice := cfg.ChoiceConfig()

	tcfg, err := choice.Resolve(reg, cfg.Settings)
	if err != nil {
		return nil, usageError(err)
	}

	if len(paths) == 0 {
		paths = []string{"-"}
	}

	files, err := items.Expand(paths...)
	if err != nil {
		return nil, err
	}

	in, err := items.Load(stdin, files...)
	if err != nil {
		return nil, err
	}

	t, err := tcfg.Transformer(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating transformer: %w", err)
	}

	defer func() {
		if cerr := t.Close(); cerr != nil {
			logger.Warn("closing transformer", slog.Any("error", cerr))
		}
	}()

	promReg := prometheus.NewRegistry()

	metrics, err := pipeline.NewMetrics(promReg)
	if err != nil {
		return nil, err
	}

	name := choice.Transformer
	if name == "" {
		name = transformer.DefaultTransformer
	}

	engine := pipeline.New(fcfg.Filter(), t,
		pipeline.WithMetrics(metrics),
		pipeline.WithLogger(logger),
		pipeline.WithTransformerName(name),
	)

	report, err := engine.Run(ctx, in)
	if err != nil {
		return nil, err
	}

	if opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.metricsFile, promReg); err != nil {
			return nil, fmt.Errorf("writing metrics: %w", err)
		}
	}

	return report, nil
}

// writeReport serializes report in the selected format to stdout or the
// output file.
func writeReport(cmd *cobra.Command, report *pipeline.Report, opts *runOptions) error {
	ser, err := output.DefaultRegistry().Serializer(opts.format)
	if err != nil {
		return usageError(err)
	}

	data, err := ser(report)
	if err != nil {
		return err
	}

	w := output.NewWriter(opts.output, cmd.OutOrStdout(),
		output.WithLogger(logging.FromContext(cmd.Context())))

	return w.Write(data)
}
