package output

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Registry maps format names to serializers, and file extensions to
// format names.
type Registry struct {
	mu          sync.RWMutex
	serializers map[string]Serializer
	extensions  map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		serializers: make(map[string]Serializer),
		extensions:  make(map[string]string),
	}
}

// Register adds or replaces the serializer for name. Each extension
// (".yaml", ".json", ...) is mapped to name, replacing earlier mappings.
func (r *Registry) Register(name string, s Serializer, exts ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.serializers[name] = s
	for _, ext := range exts {
		r.extensions[strings.ToLower(ext)] = name
	}
}

// Serializer looks up a format by name.
func (r *Registry) Serializer(name string) (Serializer, error) {
	r.mu.RLock()
	s, ok := r.serializers[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %s)", name, r.AvailableFormats())
	}

	return s, nil
}

// FormatFor returns the format registered for the extension of path.
func (r *Registry) FormatFor(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "", false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.extensions[ext]

	return name, ok
}

// Formats returns the registered format names in sorted order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.serializers))
}

// AvailableFormats joins Formats for messages, or returns "none".
func (r *Registry) AvailableFormats() string {
	if formats := r.Formats(); len(formats) > 0 {
		return strings.Join(formats, ", ")
	}

	return "none"
}

// DefaultRegistry returns a registry with the yaml and json formats.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("yaml", SerializeYAML, ".yaml", ".yml")
	r.Register("json", SerializeJSON, ".json")

	return r
}
