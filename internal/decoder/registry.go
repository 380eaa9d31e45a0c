package decoder

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"radiocode/internal/shared"
)

// Registry maps lowercase manufacturer names to decoder factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register adds a factory under name. Registering the same name again
// replaces the earlier factory.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[normalize(name)] = f
}

// Lookup resolves name case-insensitively, ignoring surrounding whitespace.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[normalize(name)]
	return f, ok
}

// Names returns the registered manufacturer keys in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Decode dispatches req to the decoder registered for req.Make.
func (r *Registry) Decode(req shared.DecodeRequest) (*shared.DecodeResponse, error) {
	if strings.TrimSpace(req.Make) == "" {
		return nil, newError(ErrMissingField, "Missing required field: make")
	}
	f, ok := r.Lookup(req.Make)
	if !ok {
		return nil, newError(ErrUnsupportedManufacturer, fmt.Sprintf("Unsupported manufacturer: %s", req.Make))
	}
	d, err := f(req)
	if err != nil {
		return nil, err
	}
	return d.Decode()
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
