package filter

import (
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/taps/internal/codec"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// sized is an item that reports a fixed footprint.
type sized int

func (s sized) SizeBytes() int { return int(s) }

var sampleItems = []any{
	nil,
	0,
	"",
	"hello",
	[]byte("payload"),
	map[string]any{"a": 1},
	[]any{1, "two", 3.0},
	sized(1 << 20),
}

// ---------------------------------------------------------------------------
// NullFilter
// ---------------------------------------------------------------------------

func TestNullFilter_KeepsEverything(t *testing.T) {
	f := NullFilter{}
	for _, item := range sampleItems {
		assert.True(t, f.Keep(item), "item %#v", item)
	}
}

// ---------------------------------------------------------------------------
// ObjectSizeFilter
// ---------------------------------------------------------------------------

func TestObjectSizeFilter_InclusiveBounds(t *testing.T) {
	f := NewObjectSizeFilter(10, 20)

	tests := []struct {
		size sized
		want bool
	}{
		{9, false},
		{10, true},
		{15, true},
		{20, true},
		{21, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, f.Keep(tt.size), "size=%d", tt.size)
	}
}

func TestObjectSizeFilter_DefaultBoundsKeepAll(t *testing.T) {
	f := NewObjectSizeFilter(0, math.Inf(1))
	for _, item := range sampleItems {
		assert.True(t, f.Keep(item), "item %#v", item)
	}
}

func TestObjectSizeFilter_InvertedBoundsDropAll(t *testing.T) {
	f := NewObjectSizeFilter(100, 10)
	for _, item := range sampleItems {
		assert.False(t, f.Keep(item), "item %#v", item)
	}
}

func TestObjectSizeFilter_String(t *testing.T) {
	assert.Equal(t, "object-size[0, inf]", NewObjectSizeFilter(0, math.Inf(1)).String())
	assert.Equal(t, "object-size[1, 64]", NewObjectSizeFilter(1, 64).String())
}

// ---------------------------------------------------------------------------
// PickleSizeFilter
// ---------------------------------------------------------------------------

func TestPickleSizeFilter_MeasuresSerializedLength(t *testing.T) {
	item := []byte("abc") // serializes to 4 bytes

	assert.True(t, NewPickleSizeFilter(4, 4).Keep(item))
	assert.False(t, NewPickleSizeFilter(5, 100).Keep(item))
	assert.False(t, NewPickleSizeFilter(0, 3).Keep(item))
}

func TestPickleSizeFilter_IgnoresSizer(t *testing.T) {
	// The declared footprint does not matter; only the encoded bytes do.
	item := sized(1 << 20)
	data, err := codec.Marshal(item)
	require.NoError(t, err)

	assert.True(t, NewPickleSizeFilter(len(data), float64(len(data))).Keep(item))
}

func TestPickleSizeFilter_UnserializableDropped(t *testing.T) {
	f := NewPickleSizeFilter(0, math.Inf(1))
	assert.False(t, f.Keep(make(chan int)))
}

// ---------------------------------------------------------------------------
// ObjectSize / SerializedSize
// ---------------------------------------------------------------------------

func TestObjectSize(t *testing.T) {
	var (
		stringHeader = int(unsafe.Sizeof(""))
		sliceHeader  = int(unsafe.Sizeof([]byte(nil)))
		intSize      = int(unsafe.Sizeof(0))
	)

	assert.Equal(t, 0, ObjectSize(nil))
	assert.Equal(t, intSize, ObjectSize(42))
	assert.Equal(t, stringHeader+5, ObjectSize("hello"))
	assert.Equal(t, sliceHeader+8, ObjectSize(make([]byte, 3, 8)))
	assert.Equal(t, sliceHeader+4*intSize, ObjectSize(make([]int, 4)))
	assert.Equal(t, 123, ObjectSize(sized(123)))

	n := 7
	assert.Equal(t, int(unsafe.Sizeof(&n))+intSize, ObjectSize(&n))
}

func TestObjectSize_GrowsWithContent(t *testing.T) {
	small := map[string]int{"a": 1}
	large := map[string]int{"a": 1, "b": 2, "c": 3}
	assert.Greater(t, ObjectSize(large), ObjectSize(small))
}

func TestSerializedSize(t *testing.T) {
	size, err := SerializedSize([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 4, size)

	_, err = SerializedSize(func() {})
	require.Error(t, err)
}
