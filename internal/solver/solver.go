// Package solver runs finite-horizon backward induction over a band-sparse
// transition tensor and resolves the ties it leaves behind.
package solver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rgehrsitz/glidepath/internal/domain"
	"github.com/rgehrsitz/glidepath/internal/transition"
)

// DefaultTieTolerance is the relative gap under which two strategies' expected
// utilities are considered equal.
const DefaultTieTolerance = 1e-9

var (
	// ErrTerminalShape is returned when the terminal utility row does not match the tensor.
	ErrTerminalShape = errors.New("terminal utility length does not match bins")
	// ErrUnknownBackend is returned by New for an unrecognised back-end name.
	ErrUnknownBackend = errors.New("unknown solver backend")
)

// Policy is the solved recurrence on the tensor's own grid. Choices has one row per
// period; Values has one more, the last being the terminal utility.
type Policy struct {
	Choices [][]domain.Choice
	Values  [][]float64
}

// Backend evaluates the backward-induction recurrence.
type Backend interface {
	Name() string
	Solve(ctx context.Context, t *transition.Tensor, terminal []float64) (*Policy, error)
}

// Options configures the back-ends built by New.
type Options struct {
	TieTolerance  float64
	WorkgroupSize int
	Workers       int
}

// New returns the back-end registered under name ("sequential" or "parallel").
func New(name string, opts Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sequential", "cpu":
		return &Sequential{TieTolerance: opts.TieTolerance}, nil
	case "parallel":
		return &Parallel{
			TieTolerance:  opts.TieTolerance,
			WorkgroupSize: opts.WorkgroupSize,
			Workers:       opts.Workers,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownBackend, name, strings.Join(Backends(), ", "))
	}
}

// Backends lists the names New accepts.
func Backends() []string {
	names := []string{"sequential", "parallel"}
	sort.Strings(names)
	return names
}

func newPolicy(t *transition.Tensor, terminal []float64) (*Policy, error) {
	if len(terminal) != t.Bins() {
		return nil, fmt.Errorf("%w: %d values for %d bins", ErrTerminalShape, len(terminal), t.Bins())
	}
	periods := t.Periods()
	p := &Policy{
		Choices: make([][]domain.Choice, periods),
		Values:  make([][]float64, periods+1),
	}
	p.Values[periods] = append([]float64(nil), terminal...)
	return p, nil
}

func tolerance(tol float64) float64 {
	if tol <= 0 {
		return DefaultTieTolerance
	}
	return tol
}

// selectBest returns the strategy with the largest expected utility, or Ambiguous
// when another strategy is within tol*max(1, |best|) of it.
func selectBest(evs []float64, tol float64) (domain.Choice, float64) {
	best := 0
	for s := 1; s < len(evs); s++ {
		if evs[s] > evs[best] {
			best = s
		}
	}
	bestValue := evs[best]
	gap := tol * max(1, abs(bestValue))
	for s, v := range evs {
		if s != best && bestValue-v <= gap {
			return domain.Ambiguous, bestValue
		}
	}
	return domain.Chosen(best), bestValue
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
