// Package grid holds the discretized wealth grid and its extension to a grid wide
// enough that no reachable wealth is clipped.
package grid

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrMalformedGrid is returned for non-increasing boundaries, non-finite values or
// mismatched lengths.
var ErrMalformedGrid = errors.New("malformed wealth grid")

// Grid is a sequence of wealth bins. Bin j covers (Boundaries[j], Boundaries[j+1]]
// and is represented by Values[j].
type Grid struct {
	Boundaries []float64 `json:"boundaries"`
	Values     []float64 `json:"values"`
}

// New builds a grid whose representative values are the bin midpoints.
func New(boundaries []float64) (Grid, error) {
	if len(boundaries) < 2 {
		return Grid{}, fmt.Errorf("%w: need at least 2 boundaries, got %d", ErrMalformedGrid, len(boundaries))
	}
	values := make([]float64, len(boundaries)-1)
	for i := range values {
		values[i] = (boundaries[i] + boundaries[i+1]) / 2
	}
	return NewWithValues(boundaries, values)
}

// NewWithValues builds a grid with explicit representative values.
func NewWithValues(boundaries, values []float64) (Grid, error) {
	g := Grid{
		Boundaries: append([]float64(nil), boundaries...),
		Values:     append([]float64(nil), values...),
	}
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}

// Bins returns the number of bins.
func (g Grid) Bins() int { return len(g.Values) }

// Validate checks a caller-supplied grid: finite, strictly increasing boundaries and
// one finite value per bin.
func (g Grid) Validate() error {
	return g.validate(false)
}

func (g Grid) validate(sentinels bool) error {
	n := len(g.Boundaries)
	if n < 2 {
		return fmt.Errorf("%w: need at least 2 boundaries, got %d", ErrMalformedGrid, n)
	}
	if len(g.Values) != n-1 {
		return fmt.Errorf("%w: %d boundaries need %d values, got %d", ErrMalformedGrid, n, n-1, len(g.Values))
	}
	for i, b := range g.Boundaries {
		if math.IsNaN(b) {
			return fmt.Errorf("%w: boundary %d is NaN", ErrMalformedGrid, i)
		}
		if math.IsInf(b, 0) {
			edge := (i == 0 && math.IsInf(b, -1)) || (i == n-1 && math.IsInf(b, 1))
			if !sentinels || !edge {
				return fmt.Errorf("%w: boundary %d is not finite", ErrMalformedGrid, i)
			}
		}
		if i > 0 && !(b > g.Boundaries[i-1]) {
			return fmt.Errorf("%w: boundaries not strictly increasing at %d (%g <= %g)",
				ErrMalformedGrid, i, b, g.Boundaries[i-1])
		}
	}
	for i, v := range g.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: value %d is not finite", ErrMalformedGrid, i)
		}
	}
	return nil
}

// Locate returns the bin holding wealth, clamped to the grid.
func (g Grid) Locate(wealth float64) int {
	return clamp(upperEdgeIndex(g.Boundaries, wealth), 0, g.Bins()-1)
}

// UpperEdgeIndex returns the smallest bin j whose upper boundary is >= wealth,
// which is the bin holding wealth under the (lower, upper] convention. Wealth
// above the last boundary yields Bins().
func (g Grid) UpperEdgeIndex(wealth float64) int {
	return upperEdgeIndex(g.Boundaries, wealth)
}

func upperEdgeIndex(boundaries []float64, wealth float64) int {
	return sort.SearchFloat64s(boundaries[1:], wealth)
}

// Linear builds bins of equal width between min and max.
func Linear(min, max float64, bins int) (Grid, error) {
	if bins < 1 || !(max > min) {
		return Grid{}, fmt.Errorf("%w: linear grid needs min < max and bins >= 1", ErrMalformedGrid)
	}
	boundaries := make([]float64, bins+1)
	width := (max - min) / float64(bins)
	for i := range boundaries {
		boundaries[i] = min + float64(i)*width
	}
	boundaries[bins] = max
	return New(boundaries)
}

// Geometric builds bins whose widths grow by a constant ratio between min and max.
func Geometric(min, max float64, bins int) (Grid, error) {
	if bins < 1 || !(min > 0) || !(max > min) {
		return Grid{}, fmt.Errorf("%w: geometric grid needs 0 < min < max and bins >= 1", ErrMalformedGrid)
	}
	boundaries := make([]float64, bins+1)
	ratio := math.Pow(max/min, 1/float64(bins))
	for i := range boundaries {
		boundaries[i] = min * math.Pow(ratio, float64(i))
	}
	boundaries[0], boundaries[bins] = min, max
	return New(boundaries)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
