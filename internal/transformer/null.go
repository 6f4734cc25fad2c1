package transformer

import (
	"context"

	"github.com/hupe1980/taps/internal/options"
)

// NullConfigType configures the identity transformer. It has no options.
type NullConfigType struct{}

// Description implements ConfigType.
func (NullConfigType) Description() string { return "pass items through unchanged" }

// Fields implements ConfigType.
func (NullConfigType) Fields() []options.Field { return nil }

// New implements ConfigType.
func (NullConfigType) New(opts map[string]any) (Config, error) {
	var cfg NullConfig
	if err := options.Decode(opts, &cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NullConfig is the configuration of the identity transformer.
type NullConfig struct{}

// Transformer implements Config.
func (NullConfig) Transformer(context.Context) (Transformer, error) {
	return NullTransformer{}, nil
}

// NullTransformer returns items as their own identifiers.
type NullTransformer struct{}

// Transform returns item unchanged.
func (NullTransformer) Transform(_ context.Context, item any) (any, error) { return item, nil }

// Resolve returns id unchanged.
func (NullTransformer) Resolve(_ context.Context, id any) (any, error) { return id, nil }

// Close is a no-op.
func (NullTransformer) Close() error { return nil }
