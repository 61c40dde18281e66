package distribution

import "fmt"

// Delta is a deterministic return.
type Delta struct {
	location float64
}

// NewDelta returns a point mass at location.
func NewDelta(location float64) (Distribution, error) {
	if err := checkFinite("delta", location); err != nil {
		return nil, err
	}
	return &Delta{location: location}, nil
}

func (d *Delta) CDF(x float64) float64 {
	if x >= d.location {
		return 1
	}
	return 0
}

// PDF is zero everywhere; the mass is reported through Deltas.
func (d *Delta) PDF(float64) float64 { return 0 }

func (d *Delta) Location() float64 { return d.location }
func (d *Delta) Scale() float64    { return 0 }

func (d *Delta) Support() (float64, float64) { return d.location, d.location }

func (d *Delta) Deltas() []PointMass {
	return []PointMass{{Location: d.location, Weight: 1}}
}

func (d *Delta) PointsOfInterest() []float64 { return []float64{d.location} }

func (d *Delta) String() string {
	return fmt.Sprintf("delta(%g)", d.location)
}
