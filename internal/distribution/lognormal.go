package distribution

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// LogNormal is a return distribution where the growth factor 1+r is log-normal.
// Location and scale are the mean and standard deviation of r itself.
type LogNormal struct {
	location float64
	scale    float64

	// parameters of ln(1+r)
	mu    float64
	sigma float64
}

// NewLogNormal returns a LogNormal distribution, or a Delta at location when scale is zero.
// The mean growth factor 1+location must be positive.
func NewLogNormal(location, scale float64) (Distribution, error) {
	if err := checkLocationScale("lognormal", location, scale); err != nil {
		return nil, err
	}
	if location <= -1 {
		return nil, fmt.Errorf("%w: lognormal location %g must exceed -1", ErrInvalidParameter, location)
	}
	if scale == 0 {
		return NewDelta(location)
	}

	m := 1 + location
	variance := math.Log1p(scale * scale / (m * m))
	return &LogNormal{
		location: location,
		scale:    scale,
		mu:       math.Log(m) - variance/2,
		sigma:    math.Sqrt(variance),
	}, nil
}

func (l *LogNormal) CDF(x float64) float64 {
	if x <= -1 {
		return 0
	}
	return standardNormalCDF((math.Log1p(x) - l.mu) / l.sigma)
}

func (l *LogNormal) PDF(x float64) float64 {
	if x <= -1 {
		return 0
	}
	return distuv.LogNormal{Mu: l.mu, Sigma: l.sigma}.Prob(1 + x)
}

func (l *LogNormal) Location() float64 { return l.location }
func (l *LogNormal) Scale() float64    { return l.scale }

func (l *LogNormal) Support() (float64, float64) {
	return math.Expm1(l.mu - tableSigmas*l.sigma), math.Expm1(l.mu + tableSigmas*l.sigma)
}

func (l *LogNormal) Deltas() []PointMass { return nil }

// PointsOfInterest returns the median and the mean return.
func (l *LogNormal) PointsOfInterest() []float64 {
	return []float64{math.Expm1(l.mu), l.location}
}

func (l *LogNormal) String() string {
	return fmt.Sprintf("lognormal(%g, %g)", l.location, l.scale)
}
