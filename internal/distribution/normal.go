package distribution

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// Normal is a Gaussian return distribution.
type Normal struct {
	mu    float64
	sigma float64
}

// NewNormal returns a Normal distribution, or a Delta at location when scale is zero.
func NewNormal(location, scale float64) (Distribution, error) {
	if err := checkLocationScale("normal", location, scale); err != nil {
		return nil, err
	}
	if scale == 0 {
		return NewDelta(location)
	}
	return &Normal{mu: location, sigma: scale}, nil
}

func (n *Normal) CDF(x float64) float64 {
	return standardNormalCDF((x - n.mu) / n.sigma)
}

func (n *Normal) PDF(x float64) float64 {
	return distuv.Normal{Mu: n.mu, Sigma: n.sigma}.Prob(x)
}

func (n *Normal) Location() float64 { return n.mu }
func (n *Normal) Scale() float64    { return n.sigma }

func (n *Normal) Support() (float64, float64) {
	return n.mu - tableSigmas*n.sigma, n.mu + tableSigmas*n.sigma
}

func (n *Normal) Deltas() []PointMass { return nil }

func (n *Normal) PointsOfInterest() []float64 {
	return []float64{n.mu - n.sigma, n.mu, n.mu + n.sigma}
}

func (n *Normal) String() string {
	return fmt.Sprintf("normal(%g, %g)", n.mu, n.sigma)
}
