package provider

import "sync"

// Registry caches SearchProvider instances by configuration identity.
// A given key yields the same instance for the lifetime of the registry, so
// providers that are expensive to construct are built once per configuration.
type Registry struct {
	mu        sync.Mutex
	providers map[string]SearchProvider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]SearchProvider),
	}
}

// Get returns the provider registered under key, constructing and caching it
// with build on first use. Construction happens under the registry lock:
// concurrent callers with the same key observe a single instance.
func (r *Registry) Get(key string, build func() (SearchProvider, error)) (SearchProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.providers[key]; ok {
		return p, nil
	}
	if build == nil {
		return nil, ErrConstructorRequired
	}

	p, err := build()
	if err != nil {
		return nil, err
	}
	r.providers[key] = p
	return p, nil
}
