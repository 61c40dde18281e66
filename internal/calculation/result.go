package calculation

import (
	"fmt"
	"sync"

	"github.com/rgehrsitz/glidepath/internal/domain"
	"github.com/rgehrsitz/glidepath/internal/grid"
	"github.com/rgehrsitz/glidepath/internal/trajectory"
	"github.com/rgehrsitz/glidepath/internal/transition"
)

// Result is a solved problem. Solution is in the caller's bin coordinates; the
// extended-grid policy it was cropped from is kept for trajectory queries.
type Result struct {
	Name      string
	Grid      grid.Grid
	Solution  *domain.Solution
	Extension grid.Extension
	Tensor    *transition.Tensor

	// Choices and Values are the tie-resolved policy on the extended grid.
	Choices [][]domain.Choice
	Values  [][]float64

	optimal func() (*transition.OptimalTensor, error)
}

func newResult(p *domain.Problem, ext grid.Extension, t *transition.Tensor, choices [][]domain.Choice, values [][]float64) *Result {
	sol := &domain.Solution{
		StrategyNames:     p.StrategyNames(),
		OptimalStrategies: make([][]domain.Choice, len(choices)),
		ExpectedUtilities: make([][]float64, len(values)),
	}
	for i, row := range choices {
		sol.OptimalStrategies[i] = append([]domain.Choice(nil), row[ext.Start:ext.End]...)
	}
	for i, row := range values {
		sol.ExpectedUtilities[i] = ext.Crop(row)
	}

	r := &Result{
		Name:      p.Name,
		Grid:      p.Grid,
		Solution:  sol,
		Extension: ext,
		Tensor:    t,
		Choices:   choices,
		Values:    values,
	}
	r.optimal = sync.OnceValues(func() (*transition.OptimalTensor, error) {
		return transition.Extract(r.Tensor, r.Choices)
	})
	return r
}

// OptimalTransitions returns the optimal-transition tensor on the extended grid,
// extracting it on first use.
func (r *Result) OptimalTransitions() (*transition.OptimalTensor, error) {
	return r.optimal()
}

// Trajectory projects mass from a caller bin at startPeriod. Rows are in caller
// coordinates: mass in the ruin bin is reported in bin 0 and mass above the grid in
// the last bin.
func (r *Result) Trajectory(startPeriod, startBin int) ([][]float64, error) {
	if startBin < 0 || startBin >= r.Grid.Bins() {
		return nil, fmt.Errorf("%w: start bin %d not in [0, %d)", trajectory.ErrOutOfRange, startBin, r.Grid.Bins())
	}
	return r.project(startPeriod, r.Extension.ToExtended(startBin))
}

// TrajectoryFromWealth projects mass from the bin holding wealth at startPeriod.
// Wealth outside the caller's grid starts in the ruin or outer bins.
func (r *Result) TrajectoryFromWealth(startPeriod int, wealth float64) ([][]float64, error) {
	return r.project(startPeriod, r.Extension.Grid.Locate(wealth))
}

// Quantiles returns quantile bands for a trajectory started from a caller bin.
func (r *Result) Quantiles(startPeriod, startBin int, probabilities []float64) ([]trajectory.QuantileBand, error) {
	rows, err := r.Trajectory(startPeriod, startBin)
	if err != nil {
		return nil, err
	}
	return trajectory.FindQuantiles(rows, probabilities, startPeriod)
}

// QuantilesFromWealth returns quantile bands for a trajectory started from wealth.
func (r *Result) QuantilesFromWealth(startPeriod int, wealth float64, probabilities []float64) ([]trajectory.QuantileBand, error) {
	rows, err := r.TrajectoryFromWealth(startPeriod, wealth)
	if err != nil {
		return nil, err
	}
	return trajectory.FindQuantiles(rows, probabilities, startPeriod)
}

func (r *Result) project(startPeriod, extendedBin int) ([][]float64, error) {
	opt, err := r.OptimalTransitions()
	if err != nil {
		return nil, err
	}
	rows, err := trajectory.Compute(opt, startPeriod, extendedBin)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(rows))
	for p, row := range rows {
		out[p] = make([]float64, r.Grid.Bins())
		for j, mass := range row {
			out[p][r.Extension.FromExtended(j)] += mass
		}
	}
	return out, nil
}
