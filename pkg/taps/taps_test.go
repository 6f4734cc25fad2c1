package taps_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/taps/pkg/taps"
)

func TestProcess_NoOptions(t *testing.T) {
	values := []any{"a", map[string]any{"k": 1}}

	res, err := taps.Process(context.Background(), values)
	require.NoError(t, err)

	assert.Equal(t, "null", res.Filter)
	assert.Equal(t, "null", res.Transformer)
	assert.Equal(t, 2, res.Kept)
	assert.Equal(t, values, res.Identifiers)
}

func TestProcess_PickleSize(t *testing.T) {
	// "ab" serializes to 3 bytes, "abcdef" to 7.
	res, err := taps.Process(context.Background(), []any{"ab", "abcdef"},
		taps.WithFilter("pickle-size", 0, 3))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Kept)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, []any{"ab"}, res.Identifiers)
}

func TestProcess_InvalidFilter(t *testing.T) {
	_, err := taps.Process(context.Background(), nil, taps.WithFilter("byte-size", 0, math.Inf(1)))
	require.Error(t, err)
}

func TestProcess_UnknownTransformer(t *testing.T) {
	_, err := taps.Process(context.Background(), nil, taps.WithTransformer("s3", nil))
	require.ErrorIs(t, err, taps.ErrNotRegistered)
}

func TestProcess_FileTransformer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "objects")

	res, err := taps.Process(context.Background(), []any{"x", "y"},
		taps.WithTransformer("file", map[string]any{"dir": dir}))
	require.NoError(t, err)
	require.Len(t, res.Identifiers, 2)

	for _, id := range res.Identifiers {
		path, ok := id.(string)
		require.True(t, ok)
		assert.FileExists(t, path)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestProcess_FileTransformerMissingDir(t *testing.T) {
	_, err := taps.Process(context.Background(), nil, taps.WithTransformer("file", nil))
	assert.ErrorContains(t, err, "dir is required")
}

func TestProcess_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := taps.Process(context.Background(), []any{"ab", "abcdef"},
		taps.WithFilter("pickle-size", 4, math.Inf(1)),
		taps.WithMetrics(reg))
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "taps_items_kept_total", "taps_items_dropped_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestProcess_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := taps.Process(ctx, []any{"a"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTransformers(t *testing.T) {
	assert.Equal(t, []string{"file", "nats", "null"}, taps.Transformers())
}
