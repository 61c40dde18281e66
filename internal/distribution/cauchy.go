package distribution

import (
	"fmt"
	"math"
)

// cauchyTail is the mass left beyond each end of the Cauchy support.
const cauchyTail = supportTolerance

// cauchySupportMultiplier is the 99.9999th percentile of the standard Cauchy.
var cauchySupportMultiplier = math.Tan(math.Pi * (0.5 - cauchyTail))

// Cauchy is a heavy-tailed return distribution with median location and half-width scale.
type Cauchy struct {
	x0    float64
	gamma float64
}

// NewCauchy returns a Cauchy distribution, or a Delta at location when scale is zero.
func NewCauchy(location, scale float64) (Distribution, error) {
	if err := checkLocationScale("cauchy", location, scale); err != nil {
		return nil, err
	}
	if scale == 0 {
		return NewDelta(location)
	}
	return &Cauchy{x0: location, gamma: scale}, nil
}

func (c *Cauchy) CDF(x float64) float64 {
	return 0.5 + math.Atan((x-c.x0)/c.gamma)/math.Pi
}

func (c *Cauchy) PDF(x float64) float64 {
	z := (x - c.x0) / c.gamma
	return 1 / (math.Pi * c.gamma * (1 + z*z))
}

func (c *Cauchy) Location() float64 { return c.x0 }
func (c *Cauchy) Scale() float64    { return c.gamma }

func (c *Cauchy) Support() (float64, float64) {
	return c.x0 - cauchySupportMultiplier*c.gamma, c.x0 + cauchySupportMultiplier*c.gamma
}

func (c *Cauchy) Deltas() []PointMass { return nil }

func (c *Cauchy) PointsOfInterest() []float64 {
	return []float64{c.x0 - c.gamma, c.x0, c.x0 + c.gamma}
}

func (c *Cauchy) String() string {
	return fmt.Sprintf("cauchy(%g, %g)", c.x0, c.gamma)
}
