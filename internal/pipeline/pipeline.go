// Package pipeline drives data items through a size filter and a
// transformer. Items the filter keeps are handed to the transformer; the
// rest are discarded and recorded in the report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hupe1980/taps/internal/filter"
	"github.com/hupe1980/taps/internal/items"
	"github.com/hupe1980/taps/internal/transformer"
)

// Outcome is the fate of an item.
type Outcome string

// Item outcomes.
const (
	OutcomeKept    Outcome = "kept"
	OutcomeDropped Outcome = "dropped"
)

// Entry records what happened to one item.
type Entry struct {
	ID         string  `json:"id"`
	Outcome    Outcome `json:"outcome"`
	ObjectSize int     `json:"objectSize"`
	Identifier any     `json:"identifier,omitempty"`
}

// Report summarizes a pipeline run.
type Report struct {
	Filter      string  `json:"filter"`
	Transformer string  `json:"transformer"`
	Kept        int     `json:"kept"`
	Dropped     int     `json:"dropped"`
	Entries     []Entry `json:"entries"`
}

// Engine applies a filter and a transformer to items.
type Engine struct {
	filter          filter.Filter
	transformer     transformer.Transformer
	transformerName string
	metrics         *Metrics
	logger          *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics records item counts and sizes on m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithTransformerName sets the transformer name shown in reports.
func WithTransformerName(name string) Option {
	return func(e *Engine) {
		e.transformerName = name
	}
}

// New creates an engine. A nil filter keeps everything.
func New(f filter.Filter, t transformer.Transformer, opts ...Option) *Engine {
	if f == nil {
		f = filter.NullFilter{}
	}

	e := &Engine{
		filter:      f,
		transformer: t,
		logger:      slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run processes items in order. It stops at the first transformer error or
// when ctx is cancelled.
func (e *Engine) Run(ctx context.Context, in []items.Item) (*Report, error) {
	report := &Report{
		Filter:      describe(e.filter),
		Transformer: e.transformerName,
		Entries:     make([]Entry, 0, len(in)),
	}

	for _, item := range in {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry, err := e.process(ctx, item)
		if err != nil {
			return nil, err
		}

		if entry.Outcome == OutcomeKept {
			report.Kept++
		} else {
			report.Dropped++
		}

		report.Entries = append(report.Entries, entry)
	}

	e.logger.Info("pipeline finished",
		slog.Int("kept", report.Kept),
		slog.Int("dropped", report.Dropped),
	)

	return report, nil
}

func (e *Engine) process(ctx context.Context, item items.Item) (Entry, error) {
	size := filter.ObjectSize(item.Value)
	entry := Entry{ID: item.ID(), ObjectSize: size}

	if e.metrics != nil {
		e.metrics.ObjectSize.Observe(float64(size))
	}

	if !e.filter.Keep(item.Value) {
		entry.Outcome = OutcomeDropped

		if e.metrics != nil {
			e.metrics.Dropped.Inc()
		}

		e.logger.Debug("item dropped", slog.String("id", entry.ID), slog.Int("objectSize", size))

		return entry, nil
	}

	entry.Outcome = OutcomeKept

	if e.metrics != nil {
		e.metrics.Kept.Inc()
	}

	if e.transformer != nil {
		id, err := e.transformer.Transform(ctx, item.Value)
		if err != nil {
			if e.metrics != nil {
				e.metrics.TransformErrors.Inc()
			}

			return Entry{}, fmt.Errorf("transforming %s: %w", entry.ID, err)
		}

		entry.Identifier = id
	}

	e.logger.Debug("item kept", slog.String("id", entry.ID), slog.Int("objectSize", size))

	return entry, nil
}

func describe(f filter.Filter) string {
	if s, ok := f.(fmt.Stringer); ok {
		return s.String()
	}

	return fmt.Sprintf("%T", f)
}
