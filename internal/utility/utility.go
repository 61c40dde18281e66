// Package utility provides the terminal utility functions a problem can optimise.
package utility

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rgehrsitz/glidepath/internal/domain"
)

var (
	ErrUnknownKind   = errors.New("unknown utility kind")
	ErrArgumentCount = errors.New("wrong number of utility arguments")
	ErrInvalidArg    = errors.New("invalid utility argument")
)

// Factory builds a utility function from its arguments.
type Factory func(args []float64) (domain.UtilityFunc, error)

type entry struct {
	arity   int
	usage   string
	factory Factory
}

// Registry maps utility kind names to factories.
type Registry struct {
	entries map[string]entry
}

// NewRegistry creates a registry with the built-in kinds.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]entry)}
	r.Register("linear", 0, "linear", func([]float64) (domain.UtilityFunc, error) { return Linear(), nil })
	r.Register("log", 1, "log(floor)", func(a []float64) (domain.UtilityFunc, error) { return Log(a[0]) })
	r.Register("crra", 2, "crra(gamma, floor)", func(a []float64) (domain.UtilityFunc, error) { return CRRA(a[0], a[1]) })
	r.Register("cara", 1, "cara(a)", func(a []float64) (domain.UtilityFunc, error) { return CARA(a[0]) })
	r.Register("target", 1, "target(threshold)", func(a []float64) (domain.UtilityFunc, error) { return Target(a[0]) })
	return r
}

// Register adds or replaces a kind.
func (r *Registry) Register(kind string, arity int, usage string, f Factory) {
	r.entries[strings.ToLower(strings.TrimSpace(kind))] = entry{arity: arity, usage: usage, factory: f}
}

// Create builds a utility function of the given kind.
func (r *Registry) Create(kind string, args ...float64) (domain.UtilityFunc, error) {
	e, ok := r.entries[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if len(args) != e.arity {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrArgumentCount, e.usage, e.arity, len(args))
	}
	for _, a := range args {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return nil, fmt.Errorf("%w: %s argument %g is not finite", ErrInvalidArg, e.usage, a)
		}
	}
	return e.factory(args)
}

// Usages returns "kind(args)" descriptions of every registered kind, sorted.
func (r *Registry) Usages() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.usage)
	}
	sort.Strings(out)
	return out
}

var defaultRegistry = NewRegistry()

// New builds a utility function from the built-in registry.
func New(kind string, args ...float64) (domain.UtilityFunc, error) {
	return defaultRegistry.Create(kind, args...)
}

// Usages lists the built-in kinds.
func Usages() []string { return defaultRegistry.Usages() }

// Linear is risk-neutral: u(w) = w.
func Linear() domain.UtilityFunc {
	return func(w float64) float64 { return w }
}

// Log is u(w) = ln(max(w, floor)).
func Log(floor float64) (domain.UtilityFunc, error) {
	if floor <= 0 {
		return nil, fmt.Errorf("%w: log floor %g must be positive", ErrInvalidArg, floor)
	}
	return func(w float64) float64 { return math.Log(math.Max(w, floor)) }, nil
}

// CRRA is constant relative risk aversion with coefficient gamma, floored at floor.
// gamma == 1 is Log.
func CRRA(gamma, floor float64) (domain.UtilityFunc, error) {
	if gamma <= 0 {
		return nil, fmt.Errorf("%w: crra gamma %g must be positive", ErrInvalidArg, gamma)
	}
	if gamma == 1 {
		return Log(floor)
	}
	if floor <= 0 {
		return nil, fmt.Errorf("%w: crra floor %g must be positive", ErrInvalidArg, floor)
	}
	k := 1 - gamma
	return func(w float64) float64 {
		return (math.Pow(math.Max(w, floor), k) - 1) / k
	}, nil
}

// CARA is constant absolute risk aversion: u(w) = (1 - e^(-a w)) / a.
func CARA(a float64) (domain.UtilityFunc, error) {
	if a <= 0 {
		return nil, fmt.Errorf("%w: cara coefficient %g must be positive", ErrInvalidArg, a)
	}
	return func(w float64) float64 { return -math.Expm1(-a*w) / a }, nil
}

// Target scores 1 for wealth at or above threshold and 0 otherwise, so the expected
// utility is the probability of reaching it.
func Target(threshold float64) (domain.UtilityFunc, error) {
	return func(w float64) float64 {
		if w >= threshold {
			return 1
		}
		return 0
	}, nil
}
