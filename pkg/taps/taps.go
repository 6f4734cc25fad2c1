// Package taps provides a Go API for filtering data items by size and
// passing the kept items to a transformer, without the CLI.
//
// Basic usage:
//
//	res, err := taps.Process(ctx, values,
//	    taps.WithFilter("pickle-size", 0, 4096),
//	)
//
// Storing kept items as files:
//
//	res, err := taps.Process(ctx, values,
//	    taps.WithTransformer("file", map[string]any{"dir": "./objects"}),
//	)
//	// res.Identifiers holds one file path per kept item.
package taps

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/taps/internal/filter"
	"github.com/hupe1980/taps/internal/items"
	"github.com/hupe1980/taps/internal/logging"
	"github.com/hupe1980/taps/internal/pipeline"
	"github.com/hupe1980/taps/internal/transformer"
)

// ErrNotRegistered is returned when a transformer name is unknown.
var ErrNotRegistered = transformer.ErrNotRegistered

// Option configures Process.
type Option func(*options)

type options struct {
	filter          filter.Config
	transformer     string
	transformerOpts map[string]any
	logger          *slog.Logger
	registerer      prometheus.Registerer
}

// WithFilter selects a size filter: "object-size" or "pickle-size", with
// inclusive bounds in bytes. Use math.Inf(1) for an unbounded maximum.
func WithFilter(filterType string, minBytes int, maxBytes float64) Option {
	return func(o *options) {
		o.filter = filter.Config{Type: filter.Type(filterType), MinSize: minBytes, MaxSize: maxBytes}
	}
}

// WithTransformer selects a transformer by name and sets its options, keyed
// by option name (e.g. "dir" for file, "bucket" for nats).
func WithTransformer(name string, opts map[string]any) Option {
	return func(o *options) {
		o.transformer = name
		o.transformerOpts = opts
	}
}

// WithLogger sets the logger. Logging is discarded by default.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithMetrics registers the pipeline metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option { return func(o *options) { o.registerer = reg } }

// Result is the outcome of Process.
type Result struct {
	// Filter describes the applied filter, e.g. "object-size[0, 1024]".
	Filter string

	// Transformer is the name of the transformer used.
	Transformer string

	// Identifiers holds the transformer's identifier for every kept item,
	// in input order.
	Identifiers []any

	// Kept and Dropped count the items on each side of the filter.
	Kept    int
	Dropped int
}

// Transformers returns the names of the built-in transformers.
func Transformers() []string {
	return transformer.DefaultRegistry().Names()
}

// Process filters values by size and passes the kept ones to the selected
// transformer. Without options every value is kept and returned unchanged.
func Process(ctx context.Context, values []any, opts ...Option) (*Result, error) {
	o := &options{
		filter:      filter.Config{MaxSize: math.Inf(1)},
		transformer: transformer.DefaultTransformer,
		logger:      logging.Discard(),
	}

	for _, opt := range opts {
		opt(o)
	}

	if err := o.filter.Validate(); err != nil {
		return nil, err
	}

	cfg, err := transformer.DefaultRegistry().Config(o.transformer, o.transformerOpts)
	if err != nil {
		return nil, err
	}

	t, err := cfg.Transformer(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating transformer: %w", err)
	}
	defer t.Close()

	engineOpts := []pipeline.Option{
		pipeline.WithLogger(o.logger),
		pipeline.WithTransformerName(o.transformer),
	}

	if o.registerer != nil {
		m, err := pipeline.NewMetrics(o.registerer)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}

		engineOpts = append(engineOpts, pipeline.WithMetrics(m))
	}

	in := make([]items.Item, len(values))
	for i, v := range values {
		in[i] = items.Item{Source: "value", Index: i, Value: v}
	}

	report, err := pipeline.New(o.filter.Filter(), t, engineOpts...).Run(ctx, in)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Filter:      report.Filter,
		Transformer: report.Transformer,
		Kept:        report.Kept,
		Dropped:     report.Dropped,
		Identifiers: make([]any, 0, report.Kept),
	}

	for _, e := range report.Entries {
		if e.Outcome == pipeline.OutcomeKept {
			res.Identifiers = append(res.Identifiers, e.Identifier)
		}
	}

	return res, nil
}
