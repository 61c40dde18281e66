// Package trajectory projects probability mass forward through an optimal-transition
// tensor and summarises it as quantile bands.
package trajectory

import (
	"errors"
	"fmt"

	"github.com/rgehrsitz/glidepath/internal/grid"
	"github.com/rgehrsitz/glidepath/internal/transition"
)

// ErrOutOfRange is returned for a start period, start bin or probability outside its domain.
var ErrOutOfRange = errors.New("trajectory argument out of range")

// Compute returns periods+1 rows of probability mass. Rows before startPeriod are
// zero, row startPeriod holds all mass in startBin, and each later row is the
// previous one pushed through that period's optimal bands.
func Compute(t *transition.OptimalTensor, startPeriod, startBin int) ([][]float64, error) {
	periods, bins := t.Periods(), t.Bins()
	if startPeriod < 0 || startPeriod > periods {
		return nil, fmt.Errorf("%w: start period %d not in [0, %d]", ErrOutOfRange, startPeriod, periods)
	}
	if startBin < 0 || startBin >= bins {
		return nil, fmt.Errorf("%w: start bin %d not in [0, %d)", ErrOutOfRange, startBin, bins)
	}

	rows := make([][]float64, periods+1)
	for p := range rows {
		rows[p] = make([]float64, bins)
	}
	rows[startPeriod][startBin] = 1

	for p := startPeriod; p < periods; p++ {
		cur, next := rows[p], rows[p+1]
		for i, mass := range cur {
			if mass == 0 {
				continue
			}
			b := t.Band(p, i)
			for j, prob := range b.Probs {
				next[b.Start+j] += mass * prob
			}
		}
	}
	return rows, nil
}

// ComputeFromWealth starts the projection from the bin holding wealth.
func ComputeFromWealth(t *transition.OptimalTensor, g grid.Grid, startPeriod int, wealth float64) ([][]float64, error) {
	if g.Bins() != t.Bins() {
		return nil, fmt.Errorf("%w: grid has %d bins, tensor %d", ErrOutOfRange, g.Bins(), t.Bins())
	}
	return Compute(t, startPeriod, g.Locate(wealth))
}
