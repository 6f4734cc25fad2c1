package transformer

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/hupe1980/taps/internal/options"
)

// ErrNotRegistered is returned when a transformer name has no registered
// configuration type.
var ErrNotRegistered = errors.New("transformer not registered")

// Registry maps transformer names to configuration types.
//
// Registration is expected to happen once at startup, before any lookup.
// Registering a name twice replaces the earlier entry; this lets callers
// override a built-in with their own configuration type.
type Registry struct {
	mu    sync.RWMutex
	types map[string]ConfigType
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]ConfigType),
	}
}

// DefaultRegistry returns a registry with the built-in transformers
// registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)

	return r
}

// Register associates t with name. An existing entry for name is replaced.
func (r *Registry) Register(name string, t ConfigType) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.types[name] = t
}

// Registered returns a copy of the name to configuration type mapping.
func (r *Registry) Registered() map[string]ConfigType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Clone(r.types)
}

// Names returns the sorted list of registered names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.types))
}

// Available returns a comma-separated list of registered names.
func (r *Registry) Available() string {
	names := r.Names()
	if len(names) == 0 {
		return "none"
	}

	return strings.Join(names, ", ")
}

// Lookup returns the configuration type registered under name.
func (r *Registry) Lookup(name string) (ConfigType, error) {
	r.mu.RLock()
	t, ok := r.types[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrNotRegistered, name, r.Available())
	}

	return t, nil
}

// Config constructs the configuration registered under name from opts.
// An unknown name yields an error wrapping ErrNotRegistered.
func (r *Registry) Config(name string, opts map[string]any) (Config, error) {
	t, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}

	cfg, err := t.New(opts)
	if err != nil {
		return nil, fmt.Errorf("configuring transformer %q: %w", name, err)
	}

	return cfg, nil
}

// Group returns the argument group of the transformer registered under name.
func (r *Registry) Group(name string) (options.Group, error) {
	t, err := r.Lookup(name)
	if err != nil {
		return options.Group{}, err
	}

	return GroupFor(name, t), nil
}

// GroupFor returns the argument group for a configuration type registered
// under name. Flags are prefixed with the name, e.g. --file-dir.
func GroupFor(name string, t ConfigType) options.Group {
	return options.Group{
		Name:   name,
		Prefix: name,
		Fields: t.Fields(),
	}
}
