package distribution

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// weightTolerance is how far compound weights may sum away from 1.
const weightTolerance = 1e-6

// Component is one weighted part of a Compound distribution.
type Component struct {
	Weight       float64
	Distribution Distribution
}

// Compound is a weighted mixture of distributions.
type Compound struct {
	components []Component
	location   float64
	scale      float64
	lo, hi     float64
	deltas     []PointMass
}

// NewCompound mixes components. Weights must be non-negative and sum to 1 within 1e-6.
func NewCompound(components ...Component) (*Compound, error) {
	if len(components) == 0 {
		return nil, fmt.Errorf("%w: compound needs at least one component", ErrInvalidParameter)
	}

	total := 0.0
	for i, c := range components {
		if c.Distribution == nil {
			return nil, fmt.Errorf("%w: compound component %d has no distribution", ErrInvalidParameter, i)
		}
		if math.IsNaN(c.Weight) || math.IsInf(c.Weight, 0) || c.Weight < 0 {
			return nil, fmt.Errorf("%w: component %d weight %g", ErrWeights, i, c.Weight)
		}
		total += c.Weight
	}
	if math.Abs(total-1) > weightTolerance {
		return nil, fmt.Errorf("%w: weights sum to %g", ErrWeights, total)
	}

	cd := &Compound{
		components: append([]Component(nil), components...),
		lo:         math.Inf(1),
		hi:         math.Inf(-1),
	}

	// E[X] and E[X^2] over the mixture
	mean, second := 0.0, 0.0
	for _, c := range cd.components {
		mu, sigma := c.Distribution.Location(), c.Distribution.Scale()
		mean += c.Weight * mu
		second += c.Weight * (sigma*sigma + mu*mu)

		lo, hi := c.Distribution.Support()
		cd.lo = math.Min(cd.lo, lo)
		cd.hi = math.Max(cd.hi, hi)

		for _, pm := range c.Distribution.Deltas() {
			cd.deltas = append(cd.deltas, PointMass{Location: pm.Location, Weight: pm.Weight * c.Weight})
		}
	}
	cd.location = mean
	cd.scale = math.Sqrt(math.Max(second-mean*mean, 0))
	return cd, nil
}

func (c *Compound) CDF(x float64) float64 {
	sum := 0.0
	for _, comp := range c.components {
		sum += comp.Weight * comp.Distribution.CDF(x)
	}
	return sum
}

func (c *Compound) PDF(x float64) float64 {
	sum := 0.0
	for _, comp := range c.components {
		sum += comp.Weight * comp.Distribution.PDF(x)
	}
	return sum
}

func (c *Compound) Location() float64           { return c.location }
func (c *Compound) Scale() float64              { return c.scale }
func (c *Compound) Support() (float64, float64) { return c.lo, c.hi }

func (c *Compound) Deltas() []PointMass {
	return append([]PointMass(nil), c.deltas...)
}

// Components returns a copy of the weighted parts.
func (c *Compound) Components() []Component {
	return append([]Component(nil), c.components...)
}

// PointsOfInterest merges the components' points, sorted and deduplicated.
func (c *Compound) PointsOfInterest() []float64 {
	var points []float64
	for _, comp := range c.components {
		points = append(points, comp.Distribution.PointsOfInterest()...)
	}
	sort.Float64s(points)
	out := points[:0]
	for _, p := range points {
		if len(out) == 0 || p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

func (c *Compound) String() string {
	parts := make([]string, len(c.components))
	for i, comp := range c.components {
		parts[i] = fmt.Sprintf("%g*%s", comp.Weight, comp.Distribution)
	}
	return "compound(" + strings.Join(parts, ", ") + ")"
}
