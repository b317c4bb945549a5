package llm

import (
	"context"
	"sync"
	"time"
)

// Middleware defines the interface for hooks around generation
type Middleware interface {
	// Name returns the middleware name for identification
	Name() string

	// BeforeGenerate is called with the history about to be sent
	BeforeGenerate(ctx context.Context, provider Provider, history []Message)

	// AfterGenerate is called with the reply and the time the call took
	AfterGenerate(ctx context.Context, provider Provider, history []Message, reply string, elapsed time.Duration)
}

// MiddlewareChain manages a chain of middleware
type MiddlewareChain struct {
	mu          sync.RWMutex
	middlewares []Middleware
}

// NewMiddlewareChain creates a new middleware chain
func NewMiddlewareChain(middlewares []Middleware) *MiddlewareChain {
	chain := &MiddlewareChain{}
	for _, middleware := range middlewares {
		chain.AddMiddleware(middleware)
	}
	return chain
}

// AddMiddleware adds a middleware to the chain
func (c *MiddlewareChain) AddMiddleware(middleware Middleware) {
	if middleware == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middlewares = append(c.middlewares, middleware)
}

// RemoveMiddleware removes a middleware by name
func (c *MiddlewareChain) RemoveMiddleware(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, middleware := range c.middlewares {
		if middleware.Name() == name {
			c.middlewares = append(c.middlewares[:i], c.middlewares[i+1:]...)
			return true
		}
	}
	return false
}

func (c *MiddlewareChain) snapshot() []Middleware {
	c.mu.RLock()
	defer c.mu.RUnlock()
	middlewares := make([]Middleware, len(c.middlewares))
	copy(middlewares, c.middlewares)
	return middlewares
}

// GetMiddlewareNames returns the names of all middleware in the chain
func (c *MiddlewareChain) GetMiddlewareNames() []string {
	middlewares := c.snapshot()
	names := make([]string, len(middlewares))
	for i, middleware := range middlewares {
		names[i] = middleware.Name()
	}
	return names
}

// EnhancedProvider wraps a Provider with a middleware chain
type EnhancedProvider struct {
	Provider
	chain *MiddlewareChain
}

// Generate runs the Before hooks in order, the wrapped provider, and the
// After hooks in reverse order
func (e *EnhancedProvider) Generate(ctx context.Context, history []Message, opts ...GenerateOption) string {
	middlewares := e.chain.snapshot()
	for _, middleware := range middlewares {
		middleware.BeforeGenerate(ctx, e.Provider, history)
	}

	start := time.Now()
	reply := e.Provider.Generate(ctx, history, opts...)
	elapsed := time.Since(start)

	for i := len(middlewares) - 1; i >= 0; i-- {
		middlewares[i].AfterGenerate(ctx, e.Provider, history, reply, elapsed)
	}
	return reply
}

// Unwrap returns the wrapped provider
func (e *EnhancedProvider) Unwrap() Provider {
	return e.Provider
}

// AddMiddleware adds a middleware to the provider's chain
func (e *EnhancedProvider) AddMiddleware(middleware Middleware) {
	e.chain.AddMiddleware(middleware)
}

// GetMiddlewareNames returns the names of all middleware in the provider's chain
func (e *EnhancedProvider) GetMiddlewareNames() []string {
	return e.chain.GetMiddlewareNames()
}

// WithMiddleware wraps a provider with the given middleware. Wrapping an
// already enhanced provider extends its existing chain.
func WithMiddleware(provider Provider, middlewares ...Middleware) Provider {
	if len(middlewares) == 0 {
		return provider
	}
	if enhanced, ok := provider.(*EnhancedProvider); ok {
		for _, middleware := range middlewares {
			enhanced.AddMiddleware(middleware)
		}
		return enhanced
	}
	return &EnhancedProvider{
		Provider: provider,
		chain:    NewMiddlewareChain(middlewares),
	}
}
