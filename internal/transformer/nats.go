package transformer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/hupe1980/taps/internal/codec"
	"github.com/hupe1980/taps/internal/options"
)

// NATSConfigType configures the NATS key-value transformer.
type NATSConfigType struct{}

// Description implements ConfigType.
func (NATSConfigType) Description() string { return "store items in a NATS JetStream key-value bucket" }

// Fields implements ConfigType.
func (NATSConfigType) Fields() []options.Field {
	return []options.Field{
		{Name: "url", Usage: "NATS server URL", Kind: options.String, Default: nats.DefaultURL},
		{Name: "bucket", Usage: "key-value bucket name", Kind: options.String},
		{Name: "timeout", Usage: "timeout for each store operation", Kind: options.Duration, Default: 5 * time.Second},
	}
}

// New implements ConfigType.
func (NATSConfigType) New(opts map[string]any) (Config, error) {
	cfg := NATSConfig{
		URL:     nats.DefaultURL,
		Timeout: 5 * time.Second,
	}

	if err := options.Decode(opts, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NATSConfig is the configuration of the NATS transformer.
type NATSConfig struct {
	URL     string        `mapstructure:"url"`
	Bucket  string        `mapstructure:"bucket"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Validate checks the bucket and timeout.
func (c NATSConfig) Validate() error {
	if c.URL == "" {
		return errors.New("url is required")
	}

	if c.Bucket == "" {
		return errors.New("bucket is required")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}

	return nil
}

// Transformer implements Config. It connects to the server and creates the
// bucket if it does not exist.
func (c NATSConfig) Transformer(ctx context.Context) (Transformer, error) {
	nc, err := nats.Connect(c.URL, nats.Timeout(c.Timeout))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", c.URL, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	opCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	kv, err := js.CreateOrUpdateKeyValue(opCtx, jetstream.KeyValueConfig{Bucket: c.Bucket})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("opening bucket %q: %w", c.Bucket, err)
	}

	return NewNATSTransformer(jetStreamKV{kv: kv}, c.Timeout, nc.Close), nil
}

// KeyValueStore is the subset of a key-value bucket the NATS transformer
// needs.
type KeyValueStore interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

type jetStreamKV struct {
	kv jetstream.KeyValue
}

func (s jetStreamKV) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.kv.Put(ctx, key, value)
	return err
}

func (s jetStreamKV) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	return entry.Value(), nil
}

// NATSTransformer stores serialized items under random keys.
type NATSTransformer struct {
	store   KeyValueStore
	timeout time.Duration
	closeFn func()
}

// NewNATSTransformer creates a transformer over store. closeFn, if non-nil,
// is called by Close.
func NewNATSTransformer(store KeyValueStore, timeout time.Duration, closeFn func()) *NATSTransformer {
	return &NATSTransformer{store: store, timeout: timeout, closeFn: closeFn}
}

// Transform stores item and returns its key.
func (t *NATSTransformer) Transform(ctx context.Context, item any) (any, error) {
	data, err := codec.Marshal(item)
	if err != nil {
		return nil, err
	}

	key := uuid.NewString()

	opCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if err := t.store.Put(opCtx, key, data); err != nil {
		return nil, fmt.Errorf("storing object %s: %w", key, err)
	}

	return key, nil
}

// Resolve fetches and decodes the item stored under the key id.
func (t *NATSTransformer) Resolve(ctx context.Context, id any) (any, error) {
	key, ok := id.(string)
	if !ok {
		return nil, fmt.Errorf("unsupported identifier type %T", id)
	}

	opCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	data, err := t.store.Get(opCtx, key)
	if err != nil {
		return nil, fmt.Errorf("fetching object %s: %w", key, err)
	}

	var item any
	if err := codec.Unmarshal(data, &item); err != nil {
		return nil, err
	}

	return item, nil
}

// Close closes the underlying connection.
func (t *NATSTransformer) Close() error {
	if t.closeFn != nil {
		t.closeFn()
	}

	return nil
}
