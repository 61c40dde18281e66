// Package domain holds the types that cross between the solver pipeline and its callers.
package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/rgehrsitz/glidepath/internal/distribution"
	"github.com/rgehrsitz/glidepath/internal/grid"
)

// ErrInvalidProblem is returned when a Problem cannot be solved as given.
var ErrInvalidProblem = errors.New("invalid problem")

// Strategy is a named investment-return distribution.
type Strategy struct {
	Name string
	distribution.Distribution
}

// NewStrategy validates dist and names it.
func NewStrategy(name string, dist distribution.Distribution) (Strategy, error) {
	if err := distribution.Validate(dist); err != nil {
		return Strategy{}, fmt.Errorf("strategy %q: %w", name, err)
	}
	return Strategy{Name: name, Distribution: dist}, nil
}

// UtilityFunc maps terminal wealth to utility.
type UtilityFunc func(wealth float64) float64

// Problem is one finite-horizon decision problem.
type Problem struct {
	Name       string
	Periods    int
	Cashflows  []float64 // one external additive wealth shock per period
	Grid       grid.Grid
	Strategies []Strategy
	Utility    UtilityFunc
}

// Validate fails fast on anything the pipeline cannot consume.
func (p *Problem) Validate() error {
	if p.Periods <= 0 {
		return fmt.Errorf("%w: periods must be positive, got %d", ErrInvalidProblem, p.Periods)
	}
	if len(p.Cashflows) != p.Periods {
		return fmt.Errorf("%w: %d cashflows for %d periods", ErrInvalidProblem, len(p.Cashflows), p.Periods)
	}
	for i, c := range p.Cashflows {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: cashflow %d is not finite", ErrInvalidProblem, i)
		}
	}
	if err := p.Grid.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProblem, err)
	}
	if len(p.Strategies) == 0 {
		return fmt.Errorf("%w: no strategies", ErrInvalidProblem)
	}
	for i, s := range p.Strategies {
		if err := distribution.Validate(s.Distribution); err != nil {
			return fmt.Errorf("%w: strategy %d (%s): %w", ErrInvalidProblem, i, s.Name, err)
		}
	}
	if p.Utility == nil {
		return fmt.Errorf("%w: no utility function", ErrInvalidProblem)
	}
	return nil
}

// Distributions returns the strategies' return distributions in order.
func (p *Problem) Distributions() []distribution.Distribution {
	out := make([]distribution.Distribution, len(p.Strategies))
	for i, s := range p.Strategies {
		out[i] = s.Distribution
	}
	return out
}

// Spreads returns the strategies' location/scale summaries in order.
func (p *Problem) Spreads() []grid.Spread {
	out := make([]grid.Spread, len(p.Strategies))
	for i, s := range p.Strategies {
		out[i] = s.Distribution
	}
	return out
}

// StrategyNames returns the strategy names in order.
func (p *Problem) StrategyNames() []string {
	out := make([]string, len(p.Strategies))
	for i, s := range p.Strategies {
		out[i] = s.Name
	}
	return out
}
