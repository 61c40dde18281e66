package distribution

import (
	"fmt"
	"sort"
	"strings"
)

// Factory builds a distribution from its numeric arguments.
type Factory func(args []float64) (Distribution, error)

type registryEntry struct {
	arity   int
	factory Factory
}

// Registry maps distribution kind names to factories.
type Registry struct {
	entries map[string]registryEntry
}

// NewRegistry creates a registry with the built-in kinds registered.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]registryEntry)}

	locationScale := func(ctor func(location, scale float64) (Distribution, error)) Factory {
		return func(args []float64) (Distribution, error) { return ctor(args[0], args[1]) }
	}
	delta := func(args []float64) (Distribution, error) { return NewDelta(args[0]) }

	r.Register("normal", 2, locationScale(NewNormal))
	r.Register("gaussian", 2, locationScale(NewNormal))
	r.Register("lognormal", 2, locationScale(NewLogNormal))
	r.Register("log-normal", 2, locationScale(NewLogNormal))
	r.Register("cauchy", 2, locationScale(NewCauchy))
	r.Register("delta", 1, delta)
	r.Register("fixed", 1, delta)
	return r
}

// Register adds or replaces a kind. Kind names are case-insensitive.
func (r *Registry) Register(kind string, arity int, factory Factory) {
	r.entries[normalizeKind(kind)] = registryEntry{arity: arity, factory: factory}
}

// Create builds a distribution of the given kind.
func (r *Registry) Create(kind string, args ...float64) (Distribution, error) {
	entry, ok := r.entries[normalizeKind(kind)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if len(args) != entry.arity {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrArgumentCount, kind, entry.arity, len(args))
	}
	return entry.factory(args)
}

// Kinds returns the registered kind names in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.entries))
	for k := range r.entries {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Arity reports how many arguments a kind takes.
func (r *Registry) Arity(kind string) (int, bool) {
	entry, ok := r.entries[normalizeKind(kind)]
	return entry.arity, ok
}

var defaultRegistry = NewRegistry()

// New builds a distribution from the built-in registry.
func New(kind string, args ...float64) (Distribution, error) {
	return defaultRegistry.Create(kind, args...)
}

// Kinds lists the built-in distribution kinds.
func Kinds() []string {
	return defaultRegistry.Kinds()
}

func normalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}
