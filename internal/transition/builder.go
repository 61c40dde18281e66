package transition

import (
	"errors"
	"fmt"
	"math"

	"github.com/rgehrsitz/glidepath/internal/distribution"
	"github.com/rgehrsitz/glidepath/internal/grid"
	"github.com/sourcegraph/conc"
)

// ErrNaNProbability is returned when a strategy's CDF yields NaN inside its band.
var ErrNaNProbability = errors.New("strategy CDF produced NaN")

// Build computes the transition tensor over an extended grid (outermost boundaries
// -Inf and +Inf). Bin 0 is absorbing ruin. Periods sharing a cashflow share a slice,
// and the distinct slices are built concurrently.
func Build(g grid.Grid, dists []distribution.Distribution, cashflows []float64) (*Tensor, error) {
	if len(dists) == 0 {
		return nil, fmt.Errorf("%w: no strategies", ErrShape)
	}
	if len(cashflows) == 0 {
		return nil, fmt.Errorf("%w: no periods", ErrShape)
	}
	b := g.Boundaries
	if len(b) < 2 || !math.IsInf(b[0], -1) || !math.IsInf(b[len(b)-1], 1) {
		return nil, fmt.Errorf("%w: grid is not extended with infinite edges", ErrShape)
	}

	periodToUnique := make([]int, len(cashflows))
	var unique []float64
	seen := make(map[float64]int)
	for p, c := range cashflows {
		u, ok := seen[c]
		if !ok {
			u = len(unique)
			seen[c] = u
			unique = append(unique, c)
		}
		periodToUnique[p] = u
	}

	slices := make([]*Slice, len(unique))
	errs := make([]error, len(unique))
	var wg conc.WaitGroup
	for u, c := range unique {
		wg.Go(func() {
			slices[u], errs[u] = buildSlice(g, dists, c)
		})
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &Tensor{
		bins:           g.Bins(),
		strategies:     len(dists),
		slices:         slices,
		periodToUnique: periodToUnique,
	}, nil
}

func buildSlice(g grid.Grid, dists []distribution.Distribution, cashflow float64) (*Slice, error) {
	s := newSlice(g.Bins(), len(dists))
	ruin := []float64{1}
	for i, v := range g.Values {
		for k, d := range dists {
			if i == 0 {
				s.append(0, ruin)
				continue
			}
			start, probs, err := band(g, v, cashflow, d)
			if err != nil {
				return nil, fmt.Errorf("cashflow %g, bin %d, strategy %d (%s): %w", cashflow, i, k, d, err)
			}
			s.append(start, probs)
		}
	}
	return s, nil
}

// band maps wealth' = wealth*(1+r) + cashflow over the strategy's support onto the
// grid. The first bin's lower CDF and the last bin's upper CDF are saturated, so
// the band sums to exactly 1.
func band(g grid.Grid, wealth, cashflow float64, d distribution.Distribution) (int, []float64, error) {
	if wealth == 0 {
		return g.UpperEdgeIndex(cashflow), []float64{1}, nil
	}

	lo, hi := d.Support()
	wLo, wHi := wealth*(1+lo)+cashflow, wealth*(1+hi)+cashflow
	if wealth < 0 {
		wLo, wHi = wHi, wLo
	}
	bottom := g.UpperEdgeIndex(wLo)
	top := g.UpperEdgeIndex(wHi) + 1

	probs := make([]float64, top-bottom)
	cdfBottom := 0.0
	for j := bottom; j < top; j++ {
		cdfTop := 1.0
		if j < top-1 {
			cdfTop = wealthCDF(d, wealth, cashflow, g.Boundaries[j+1])
			if math.IsNaN(cdfTop) {
				return 0, nil, ErrNaNProbability
			}
		}
		probs[j-bottom] = cdfTop - cdfBottom
		cdfBottom = cdfTop
	}
	return bottom, probs, nil
}

// wealthCDF is P(wealth' <= w) for a nonzero starting wealth. A negative wealth
// flips the event to r >= r_w, so point masses sitting exactly on r_w count too.
func wealthCDF(d distribution.Distribution, wealth, cashflow, w float64) float64 {
	r := (w-cashflow)/wealth - 1
	if wealth > 0 {
		return d.CDF(r)
	}
	p := 1 - d.CDF(r)
	for _, pm := range d.Deltas() {
		if pm.Location == r {
			p += pm.Weight
		}
	}
	return math.Min(p, 1)
}
