// Package transformer defines pluggable data transformers, the registry
// that maps transformer names to their configuration types, and the
// two-step construction of the transformer selection flags.
//
// Transformers are registered explicitly at startup against a [Registry]
// (see [RegisterBuiltins]); there is no package-level registration state.
package transformer

import (
	"context"

	"github.com/hupe1980/taps/internal/options"
)

// Transformer converts a data item into an identifier and back.
type Transformer interface {
	// Transform stores or wraps item and returns an identifier for it.
	Transform(ctx context.Context, item any) (any, error)

	// Resolve returns the item referenced by id.
	Resolve(ctx context.Context, id any) (any, error)

	// Close releases any resources held by the transformer.
	Close() error
}

// Config is a resolved transformer configuration.
type Config interface {
	// Transformer builds the runtime transformer described by the config.
	Transformer(ctx context.Context) (Transformer, error)
}

// ConfigType describes a registrable transformer configuration: the options
// it exposes as an argument group and how to construct it from them.
type ConfigType interface {
	// Description is a one-line summary used in listings.
	Description() string

	// Fields returns the options of this configuration type.
	Fields() []options.Field

	// New constructs a configuration from options keyed by field name.
	New(opts map[string]any) (Config, error)
}
