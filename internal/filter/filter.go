package filter

import (
	"fmt"
	"math"
)

// Filter decides whether a data item is kept.
// Filters are stateless: Keep has no side effects and is safe to call
// from multiple goroutines.
type Filter interface {
	// Keep reports whether item passes the filter.
	Keep(item any) bool
}

// NullFilter keeps every item.
type NullFilter struct{}

// Keep always returns true.
func (NullFilter) Keep(any) bool { return true }

// String implements fmt.Stringer.
func (NullFilter) String() string { return "null" }

// ObjectSizeFilter keeps items whose in-memory footprint lies within
// [MinBytes, MaxBytes].
type ObjectSizeFilter struct {
	MinBytes int
	MaxBytes float64
}

// NewObjectSizeFilter creates an object size filter. Use math.Inf(1) for an
// unbounded maximum.
func NewObjectSizeFilter(minBytes int, maxBytes float64) *ObjectSizeFilter {
	return &ObjectSizeFilter{MinBytes: minBytes, MaxBytes: maxBytes}
}

// Keep reports whether MinBytes <= ObjectSize(item) <= MaxBytes.
func (f *ObjectSizeFilter) Keep(item any) bool {
	return inBounds(ObjectSize(item), f.MinBytes, f.MaxBytes)
}

// String implements fmt.Stringer.
func (f *ObjectSizeFilter) String() string {
	return fmt.Sprintf("object-size[%d, %s]", f.MinBytes, formatMax(f.MaxBytes))
}

// PickleSizeFilter keeps items whose serialized form is between MinBytes
// and MaxBytes long. Items that cannot be serialized are dropped.
type PickleSizeFilter struct {
	MinBytes int
	MaxBytes float64
}

// NewPickleSizeFilter creates a serialized size filter. Use math.Inf(1) for
// an unbounded maximum.
func NewPickleSizeFilter(minBytes int, maxBytes float64) *PickleSizeFilter {
	return &PickleSizeFilter{MinBytes: minBytes, MaxBytes: maxBytes}
}

// Keep reports whether MinBytes <= SerializedSize(item) <= MaxBytes.
func (f *PickleSizeFilter) Keep(item any) bool {
	size, err := SerializedSize(item)
	if err != nil {
		return false
	}

	return inBounds(size, f.MinBytes, f.MaxBytes)
}

// String implements fmt.Stringer.
func (f *PickleSizeFilter) String() string {
	return fmt.Sprintf("pickle-size[%d, %s]", f.MinBytes, formatMax(f.MaxBytes))
}

// inBounds checks min <= size <= max with both ends inclusive.
func inBounds(size, minBytes int, maxBytes float64) bool {
	return size >= minBytes && float64(size) <= maxBytes
}

func formatMax(maxBytes float64) string {
	if math.IsInf(maxBytes, 1) {
		return "inf"
	}

	return fmt.Sprintf("%g", maxBytes)
}

// Compile-time interface checks.
var (
	_ Filter = NullFilter{}
	_ Filter = (*ObjectSizeFilter)(nil)
	_ Filter = (*PickleSizeFilter)(nil)
)
