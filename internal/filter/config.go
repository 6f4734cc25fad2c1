package filter

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/pflag"
)

// Type selects a filter implementation.
type Type string

// Supported filter types. TypeNone and TypeDisabled both disable filtering.
const (
	TypeNone       Type = ""
	TypeDisabled   Type = "none"
	TypeObjectSize Type = "object-size"
	TypePickleSize Type = "pickle-size"
)

// Types returns the selectable filter types in a stable order.
func Types() []Type {
	return []Type{TypeDisabled, TypeObjectSize, TypePickleSize}
}

// Flag names contributed by RegisterFlags.
const (
	FlagType    = "filter-type"
	FlagMinSize = "filter-min-size"
	FlagMaxSize = "filter-max-size"
)

// Config selects a filter and its inclusive size bounds.
type Config struct {
	// Type is the filter type. The zero value disables filtering.
	Type Type

	// MinSize is the minimum item size in bytes.
	MinSize int

	// MaxSize is the maximum item size in bytes; +Inf means unbounded.
	MaxSize float64
}

// DefaultConfig returns a configuration that keeps everything.
func DefaultConfig() Config {
	return Config{
		Type:    TypeNone,
		MinSize: 0,
		MaxSize: math.Inf(1),
	}
}

// Validate checks the filter type and lower bound. MinSize > MaxSize is
// accepted; such a filter drops every item.
func (c Config) Validate() error {
	switch c.Type {
	case TypeNone, TypeDisabled, TypeObjectSize, TypePickleSize:
		// valid
	default:
		return fmt.Errorf("invalid filter type %q: must be one of %s; empty also disables filtering", c.Type, joinTypes())
	}

	if c.MinSize < 0 {
		return fmt.Errorf("invalid filter min size %d: must be non-negative", c.MinSize)
	}

	if math.IsNaN(c.MaxSize) {
		return fmt.Errorf("invalid filter max size: must be a number")
	}

	return nil
}

// Inverted reports whether the bounds can never be satisfied.
func (c Config) Inverted() bool {
	return float64(c.MinSize) > c.MaxSize
}

// Filter returns the filter selected by c. It panics on an unknown type:
// Validate rejects such configurations, so reaching the panic is a
// programming error.
func (c Config) Filter() Filter {
	switch c.Type {
	case TypeNone, TypeDisabled:
		return NullFilter{}
	case TypeObjectSize:
		return NewObjectSizeFilter(c.MinSize, c.MaxSize)
	case TypePickleSize:
		return NewPickleSizeFilter(c.MinSize, c.MaxSize)
	default:
		panic(fmt.Sprintf("filter: unknown filter type %q", c.Type))
	}
}

// RegisterFlags adds the filter flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()

	fs.String(FlagType, string(d.Type), "filter type ("+joinTypes()+"); none or empty disables filtering")
	fs.Int(FlagMinSize, d.MinSize, "min size for filter in bytes")
	fs.Float64(FlagMaxSize, d.MaxSize, "max size for filter in bytes")
}

func joinTypes() string {
	names := make([]string, 0, len(Types()))
	for _, t := range Types() {
		names = append(names, string(t))
	}

	return strings.Join(names, ", ")
}
