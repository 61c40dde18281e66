package grid

import (
	"fmt"
	"math"
)

// DefaultMaxOuterBins caps how many log-spaced bins are added above the caller's grid.
const DefaultMaxOuterBins = 400

// minOuterStep keeps the outer bins from collapsing when every strategy is nearly riskless.
const minOuterStep = 1e-3

// Spread is the location/scale summary of a strategy's return.
type Spread interface {
	Location() float64
	Scale() float64
}

// Extension is a grid with -Inf/+Inf sentinel edges wide enough to hold every
// reachable wealth. The caller's bins occupy [Start, End) of Grid.
type Extension struct {
	Grid  Grid
	Start int
	End   int
}

// ExtendOptions tunes Extend.
type ExtendOptions struct {
	MaxOuterBins int
}

// Extend wraps original with a ruin bin (-Inf, b0] below it, log-spaced outer bins
// above it and a final (last, +Inf) bin. The outer bins reach
//
//	(top + sum of positive cashflows) * (1 + maxExcursion * periods)
//
// where an excursion is |location| + scale; the log step is at least the smallest
// strategy's excursion. len(cashflows) is the number of periods.
func Extend(original Grid, spreads []Spread, cashflows []float64, opts ExtendOptions) (Extension, error) {
	if err := original.Validate(); err != nil {
		return Extension{}, err
	}
	if len(spreads) == 0 {
		return Extension{}, fmt.Errorf("extend grid: no strategies")
	}
	maxOuter := opts.MaxOuterBins
	if maxOuter <= 0 {
		maxOuter = DefaultMaxOuterBins
	}

	maxExc, minExc := 0.0, math.Inf(1)
	for _, s := range spreads {
		exc := math.Abs(s.Location()) + s.Scale()
		maxExc = math.Max(maxExc, exc)
		minExc = math.Min(minExc, exc)
	}
	upside := 0.0
	for _, c := range cashflows {
		upside += math.Max(c, 0)
	}

	n := original.Bins()
	top := original.Boundaries[n]
	lastWidth := top - original.Boundaries[n-1]
	periods := float64(len(cashflows))

	var (
		outer []float64
		err   error
	)
	if top > 0 {
		target := (top + upside) * (1 + maxExc*periods)
		step := math.Max(minExc, minOuterStep)
		outer, err = geometricEdges(top, target, step, maxOuter)
	} else {
		target := top + upside + lastWidth*(1+maxExc*periods)
		outer, err = linearEdges(top, target, lastWidth, maxOuter)
	}
	if err != nil {
		return Extension{}, fmt.Errorf("extend grid: %w", err)
	}

	boundaries := make([]float64, 0, n+len(outer)+3)
	values := make([]float64, 0, n+len(outer)+2)

	boundaries = append(boundaries, math.Inf(-1))
	values = append(values, original.Boundaries[0])

	boundaries = append(boundaries, original.Boundaries...)
	values = append(values, original.Values...)

	prev := top
	for _, edge := range outer {
		boundaries = append(boundaries, edge)
		values = append(values, (prev+edge)/2)
		prev = edge
	}
	boundaries = append(boundaries, math.Inf(1))
	values = append(values, prev)

	ext := Extension{
		Grid:  Grid{Boundaries: boundaries, Values: values},
		Start: 1,
		End:   1 + n,
	}
	if err := ext.Grid.validate(true); err != nil {
		return Extension{}, fmt.Errorf("extend grid: %w", err)
	}
	return ext, nil
}

// Crop returns the caller's part of a row laid out on the extended grid.
func (e Extension) Crop(row []float64) []float64 {
	return append([]float64(nil), row[e.Start:e.End]...)
}

// ToExtended maps a caller bin index to its extended index.
func (e Extension) ToExtended(bin int) int { return bin + e.Start }

// FromExtended maps an extended bin index to the caller's grid, clamping bins
// outside the caller's range onto its edges.
func (e Extension) FromExtended(bin int) int {
	return clamp(bin-e.Start, 0, e.End-e.Start-1)
}

func geometricEdges(top, target, step float64, maxBins int) ([]float64, error) {
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return nil, fmt.Errorf("%w: outer target %g is not finite", ErrMalformedGrid, target)
	}
	if !(target > top) {
		return nil, nil
	}
	ratio := 1 + step
	steps := math.Ceil(math.Log(target/top) / math.Log(ratio))
	if math.IsNaN(steps) || math.IsInf(steps, 0) || steps < 0 {
		return nil, fmt.Errorf("%w: cannot reach %g from %g in steps of %g", ErrMalformedGrid, target, top, step)
	}
	count := maxBins
	if steps <= float64(maxBins) {
		count = int(steps)
	} else {
		ratio = math.Pow(target/top, 1/float64(count))
	}
	edges := make([]float64, count)
	for k := range edges {
		edges[k] = top * math.Pow(ratio, float64(k+1))
	}
	return edges, nil
}

func linearEdges(top, target, width float64, maxBins int) ([]float64, error) {
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return nil, fmt.Errorf("%w: outer target %g is not finite", ErrMalformedGrid, target)
	}
	if !(target > top) {
		return nil, nil
	}
	steps := math.Ceil((target - top) / width)
	if math.IsNaN(steps) || math.IsInf(steps, 0) || steps < 0 {
		return nil, fmt.Errorf("%w: cannot reach %g from %g in steps of %g", ErrMalformedGrid, target, top, width)
	}
	count := maxBins
	if steps <= float64(maxBins) {
		count = int(steps)
	} else {
		width = (target - top) / float64(count)
	}
	edges := make([]float64, count)
	for k := range edges {
		edges[k] = top + float64(k+1)*width
	}
	return edges, nil
}
