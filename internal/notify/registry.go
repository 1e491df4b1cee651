package notify

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages available notification sinks
type Registry struct {
	mu    sync.RWMutex
	sinks map[string]SinkFactory
}

// NewRegistry creates a new sink registry
func NewRegistry() *Registry {
	return &Registry{
		sinks: make(map[string]SinkFactory),
	}
}

// Register adds a new sink factory to the registry
func (r *Registry) Register(name string, factory SinkFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sinks[name]; exists {
		return fmt.Errorf("sink %s already registered", name)
	}

	r.sinks[name] = factory
	return nil
}

// Create instantiates a sink by name
func (r *Registry) Create(name string, opts Options) (Sink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.sinks[name]
	if !exists {
		return nil, fmt.Errorf("sink %s not registered", name)
	}

	return factory(opts), nil
}

// List returns all registered sink names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sinks))
	for name := range r.sinks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Global registry instance
var defaultRegistry = NewRegistry()

// Register adds a sink to the global registry
func Register(name string, factory SinkFactory) error {
	return defaultRegistry.Register(name, factory)
}

// CreateSink creates a sink from the global registry
func CreateSink(name string, opts Options) (Sink, error) {
	return defaultRegistry.Create(name, opts)
}

// ListSinks returns all registered sink names from the global registry
func ListSinks() []string {
	return defaultRegistry.List()
}
