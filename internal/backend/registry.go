package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/naka-gawa/ai-changelog/internal/domain"
)

// Factory builds a backend for one provider.
type Factory func(opts Options) Backend

// Registry maps providers to backend factories. Adding a provider means registering
// a factory; prompt construction never changes.
type Registry struct {
	mu        sync.RWMutex
	factories map[domain.Provider]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[domain.Provider]Factory)}
}

// DefaultRegistry knows every built-in provider.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(domain.ProviderOpenAI, func(opts Options) Backend { return NewOpenAI(opts) })
	_ = r.Register(domain.ProviderAnthropic, func(opts Options) Backend { return NewAnthropic(opts) })
	return r
}

// Register adds a factory. Registering the same provider twice is an error.
func (r *Registry) Register(p domain.Provider, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[p]; exists {
		return fmt.Errorf("provider %q is already registered", p)
	}
	r.factories[p] = f
	return nil
}

// New builds the backend registered for p.
func (r *Registry) New(p domain.Provider, opts Options) (Backend, error) {
	r.mu.RLock()
	f, ok := r.factories[p]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("provider %q is not registered", p)
	}
	return f(opts), nil
}

// List returns the registered providers sorted by name.
func (r *Registry) List() []domain.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Provider, 0, len(r.factories))
	for p := range r.factories {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
