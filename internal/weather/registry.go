package weather

import (
	"sort"

	"github.com/i474232898/weather-lookup/internal/logger"
)

// Registry maps lower-cased provider names to providers. The zero value is an
// empty registry ready to use.
// It is populated once at startup and only read afterwards; Register must not
// race with Resolve.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider under name, replacing any existing entry.
// Callers normalize the name to lower case.
func (r *Registry) Register(name string, p Provider) {
	if r.providers == nil {
		r.providers = make(map[string]Provider)
	}
	if _, exists := r.providers[name]; exists {
		logger.GetLogger().Warnw("Provider is already registered and will be overwritten", "provider", name)
	}
	r.providers[name] = p
}

// Resolve returns the provider registered under name.
func (r *Registry) Resolve(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names returns the registered provider names in ascending order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of registered providers.
func (r *Registry) Len() int {
	return len(r.providers)
}
