package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/taps/internal/filter"
	"github.com/hupe1980/taps/internal/items"
	"github.com/hupe1980/taps/internal/transformer"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// sized reports a fixed footprint to the object size filter.
type sized int

func (s sized) SizeBytes() int { return int(s) }

func sizedItems(sizes ...int) []items.Item {
	out := make([]items.Item, len(sizes))
	for i, s := range sizes {
		out[i] = items.Item{Source: "test", Index: i, Value: sized(s)}
	}

	return out
}

// failingTransformer fails on every item.
type failingTransformer struct{ transformer.NullTransformer }

func (failingTransformer) Transform(context.Context, any) (any, error) {
	return nil, errors.New("backend down")
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

func TestEngine_NullFilterKeepsAll(t *testing.T) {
	e := New(filter.NullFilter{}, transformer.NullTransformer{})

	report, err := e.Run(context.Background(), sizedItems(1, 100, 10000))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Kept)
	assert.Equal(t, 0, report.Dropped)
	assert.Equal(t, "null", report.Filter)
}

func TestEngine_ObjectSizeFilter(t *testing.T) {
	e := New(filter.NewObjectSizeFilter(10, 20), transformer.NullTransformer{},
		WithTransformerName("null"))

	report, err := e.Run(context.Background(), sizedItems(9, 10, 20, 21))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Kept)
	assert.Equal(t, 2, report.Dropped)
	assert.Equal(t, "object-size[10, 20]", report.Filter)
	assert.Equal(t, "null", report.Transformer)

	outcomes := make([]Outcome, 0, len(report.Entries))
	for _, e := range report.Entries {
		outcomes = append(outcomes, e.Outcome)
	}

	assert.Equal(t, []Outcome{OutcomeDropped, OutcomeKept, OutcomeKept, OutcomeDropped}, outcomes)
}

func TestEngine_DroppedItemsNotTransformed(t *testing.T) {
	e := New(filter.NewObjectSizeFilter(100, 200), failingTransformer{})

	report, err := e.Run(context.Background(), sizedItems(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Dropped)

	for _, entry := range report.Entries {
		assert.Nil(t, entry.Identifier)
	}
}

func TestEngine_RecordsIdentifiers(t *testing.T) {
	e := New(nil, transformer.NullTransformer{})

	report, err := e.Run(context.Background(), sizedItems(5))
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, sized(5), report.Entries[0].Identifier)
	assert.Equal(t, "test#0", report.Entries[0].ID)
	assert.Equal(t, 5, report.Entries[0].ObjectSize)
}

func TestEngine_TransformError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	e := New(nil, failingTransformer{}, WithMetrics(m))

	_, err = e.Run(context.Background(), sizedItems(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transforming test#0")
	assert.Contains(t, err.Error(), "backend down")
	assert.InDelta(t, 1, testutil.ToFloat64(m.TransformErrors), 0)
}

func TestEngine_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil, nil).Run(ctx, sizedItems(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_NoItems(t *testing.T) {
	report, err := New(nil, nil).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, report.Entries)
	assert.NotNil(t, report.Entries)
}

// ---------------------------------------------------------------------------
// Metrics
// ---------------------------------------------------------------------------

func TestEngine_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	e := New(filter.NewObjectSizeFilter(10, 20), transformer.NullTransformer{}, WithMetrics(m))

	_, err = e.Run(context.Background(), sizedItems(5, 15, 25, 12))
	require.NoError(t, err)

	assert.InDelta(t, 2, testutil.ToFloat64(m.Kept), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.Dropped), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.TransformErrors), 0)

	count, err := testutil.GatherAndCount(reg, "taps_item_object_size_bytes")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestEntry_MarshalJSONNonJSONValues(t *testing.T) {
	ident := map[any]any{
		1:   "one",
		"v": math.NaN(),
		"nested": []any{
			math.Inf(1),
			map[string]any{"low": math.Inf(-1), "ok": 1.5},
		},
	}
	e := Entry{ID: "in.yaml#0", Outcome: OutcomeKept, ObjectSize: 8, Identifier: ident}

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "in.yaml#0",
		"outcome": "kept",
		"objectSize": 8,
		"identifier": {"1": "one", "v": ".nan", "nested": [".inf", {"low": "-.inf", "ok": 1.5}]}
	}`, string(data))

	// the entry itself still holds the decoded value
	assert.IsType(t, map[any]any{}, e.Identifier)
}

func TestEntry_MarshalJSONOmitsNilIdentifier(t *testing.T) {
	data, err := json.Marshal(Entry{ID: "a#0", Outcome: OutcomeDropped})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "identifier")
}
