// Package distribution provides the closed-form return distributions a strategy
// can follow: Normal, Log-Normal, Cauchy, point-mass Delta and weighted Compound
// mixtures of those.
package distribution

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidParameter is returned when a distribution argument is NaN, infinite or out of range.
	ErrInvalidParameter = errors.New("invalid distribution parameter")
	// ErrUnknownKind is returned by the factory for an unregistered distribution kind.
	ErrUnknownKind = errors.New("unknown distribution kind")
	// ErrArgumentCount is returned by the factory when a kind receives the wrong number of arguments.
	ErrArgumentCount = errors.New("wrong number of distribution arguments")
	// ErrWeights is returned when compound weights are negative or do not sum to 1.
	ErrWeights = errors.New("compound weights must be non-negative and sum to 1")
	// ErrMalformed is returned by Validate for a distribution whose support or CDF is unusable.
	ErrMalformed = errors.New("malformed distribution")
)

// supportTolerance is the probability mass a support interval may leave outside itself.
const supportTolerance = 1e-6

// PointMass is a discrete outcome mixed into a distribution.
type PointMass struct {
	Location float64 `json:"location"`
	Weight   float64 `json:"weight"`
}

// Distribution describes the one-period return of a strategy.
//
// CDF must be non-decreasing and right-continuous. Outside Support the CDF is
// treated as saturated at 0 or 1. PDF and PointsOfInterest are for display only.
type Distribution interface {
	CDF(x float64) float64
	PDF(x float64) float64
	Location() float64
	Scale() float64
	Support() (lo, hi float64)
	Deltas() []PointMass
	PointsOfInterest() []float64
	String() string
}

// Validate rejects distributions with a non-finite or inverted support, a zero-length
// support carrying continuous mass, or a CDF that yields NaN.
func Validate(d Distribution) error {
	if d == nil {
		return fmt.Errorf("%w: nil distribution", ErrMalformed)
	}
	lo, hi := d.Support()
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return fmt.Errorf("%w: %s has non-finite support [%g, %g]", ErrMalformed, d, lo, hi)
	}
	if hi < lo {
		return fmt.Errorf("%w: %s has inverted support [%g, %g]", ErrMalformed, d, lo, hi)
	}

	pointWeight := 0.0
	for _, pm := range d.Deltas() {
		if math.IsNaN(pm.Weight) || pm.Weight < 0 {
			return fmt.Errorf("%w: %s has a point mass with weight %g", ErrMalformed, d, pm.Weight)
		}
		pointWeight += pm.Weight
	}
	if hi == lo && pointWeight < 1-supportTolerance {
		return fmt.Errorf("%w: %s has zero-length support with continuous mass", ErrMalformed, d)
	}

	for _, x := range []float64{lo, (lo + hi) / 2, hi} {
		if math.IsNaN(d.CDF(x)) {
			return fmt.Errorf("%w: %s CDF is NaN at %g", ErrMalformed, d, x)
		}
	}
	return nil
}

func checkFinite(name string, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s argument %g is not finite", ErrInvalidParameter, name, v)
		}
	}
	return nil
}

func checkLocationScale(name string, location, scale float64) error {
	if err := checkFinite(name, location, scale); err != nil {
		return err
	}
	if scale < 0 {
		return fmt.Errorf("%w: %s scale %g is negative", ErrInvalidParameter, name, scale)
	}
	return nil
}
