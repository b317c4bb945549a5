package factory

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/inercia/llm-code/pkg/llm"
)

// Constructor builds a provider from its configuration. It returns an error
// for misconfiguration, which callers must not swallow.
type Constructor func(cfg llm.ProviderConfig, logger *zap.Logger) (llm.Provider, error)

// Registry holds provider constructors by backend identifier
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
	}
}

// Register adds or replaces the constructor for a backend identifier
func (r *Registry) Register(name string, constructor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[normalize(name)] = constructor
}

// Has reports whether a backend identifier is registered
func (r *Registry) Has(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

// Create builds the provider registered under name
func (r *Registry) Create(name string, cfg llm.ProviderConfig, logger *zap.Logger) (llm.Provider, error) {
	constructor, ok := r.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", llm.ErrUnknownProvider, name)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	provider, err := constructor(cfg.Clone(), logger)
	if err != nil {
		return nil, fmt.Errorf("creating %s provider: %w", normalize(name), err)
	}
	return provider, nil
}

// Names returns the registered backend identifiers, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) lookup(name string) (Constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	constructor, exists := r.constructors[normalize(name)]
	return constructor, exists
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
