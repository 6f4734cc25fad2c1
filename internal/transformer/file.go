package transformer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/hupe1980/taps/internal/codec"
	"github.com/hupe1980/taps/internal/options"
)

// FileConfigType configures the file transformer.
type FileConfigType struct{}

// Description implements ConfigType.
func (FileConfigType) Description() string { return "store items as files in a directory" }

// Fields implements ConfigType.
func (FileConfigType) Fields() []options.Field {
	return []options.Field{
		{Name: "dir", Usage: "directory to store objects in", Kind: options.String},
	}
}

// New implements ConfigType.
func (FileConfigType) New(opts map[string]any) (Config, error) {
	var cfg FileConfig
	if err := options.Decode(opts, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FileConfig is the configuration of the file transformer.
type FileConfig struct {
	// Dir is the directory objects are written to.
	Dir string `mapstructure:"dir"`
}

// Validate checks that a directory was given.
func (c FileConfig) Validate() error {
	if c.Dir == "" {
		return errors.New("dir is required")
	}

	return nil
}

// Transformer implements Config. The directory is created if missing.
func (c FileConfig) Transformer(context.Context) (Transformer, error) {
	if err := os.MkdirAll(c.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating object directory %q: %w", c.Dir, err)
	}

	return &FileTransformer{dir: c.Dir}, nil
}

// FileTransformer writes each item to its own file and uses the file path
// as the identifier.
type FileTransformer struct {
	dir string
}

// Transform serializes item into a new file and returns its path.
func (t *FileTransformer) Transform(ctx context.Context, item any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := codec.Marshal(item)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(t.dir, uuid.NewString()+".cbor")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("writing object %q: %w", path, err)
	}

	return path, nil
}

// Resolve reads the item stored at the path id.
func (t *FileTransformer) Resolve(ctx context.Context, id any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, ok := id.(string)
	if !ok {
		return nil, fmt.Errorf("unsupported identifier type %T", id)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading object %q: %w", path, err)
	}

	var item any
	if err := codec.Unmarshal(data, &item); err != nil {
		return nil, err
	}

	return item, nil
}

// Close is a no-op; written objects are left in place.
func (t *FileTransformer) Close() error { return nil }
