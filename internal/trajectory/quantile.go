package trajectory

import (
	"fmt"

	"github.com/rgehrsitz/glidepath/internal/grid"
)

// massEpsilon is the cumulative mass treated as zero when searching for a quantile bin.
const massEpsilon = 1e-12

// QuantileBand brackets the central Probability of the mass at each period X.
type QuantileBand struct {
	Probability float64 `json:"probability"`
	X           []int   `json:"x"`
	YBottom     []int   `json:"y_bottom"`
	YTop        []int   `json:"y_top"`
}

// WealthBand is a QuantileBand expressed as wealth boundaries.
type WealthBand struct {
	Probability float64   `json:"probability"`
	X           []int     `json:"x"`
	Lower       []float64 `json:"lower"`
	Upper       []float64 `json:"upper"`
}

// FindQuantiles returns one band per probability covering rows startPeriod onward.
// For probability q the bottom bin is where mass summed from below first reaches
// (1-q)/2, and the top bin is the same from above.
func FindQuantiles(rows [][]float64, probabilities []float64, startPeriod int) ([]QuantileBand, error) {
	if startPeriod < 0 || startPeriod >= len(rows) {
		return nil, fmt.Errorf("%w: start period %d not in [0, %d)", ErrOutOfRange, startPeriod, len(rows))
	}
	bands := make([]QuantileBand, 0, len(probabilities))
	for _, q := range probabilities {
		if !(q >= 0 && q <= 1) {
			return nil, fmt.Errorf("%w: probability %g not in [0, 1]", ErrOutOfRange, q)
		}
		target := (1 - q) / 2
		band := QuantileBand{Probability: q}
		for p := startPeriod; p < len(rows); p++ {
			band.X = append(band.X, p)
			band.YBottom = append(band.YBottom, bottomBin(rows[p], target))
			band.YTop = append(band.YTop, topBin(rows[p], target))
		}
		bands = append(bands, band)
	}
	return bands, nil
}

func bottomBin(row []float64, target float64) int {
	cum := 0.0
	for i, m := range row {
		cum += m
		if cum >= target-massEpsilon && cum > massEpsilon {
			return i
		}
	}
	return len(row) - 1
}

func topBin(row []float64, target float64) int {
	cum := 0.0
	for i := len(row) - 1; i >= 0; i-- {
		cum += row[i]
		if cum >= target-massEpsilon && cum > massEpsilon {
			return i
		}
	}
	return 0
}

// Wealth maps the band's bins onto g: the lower edge of each bottom bin and the
// upper edge of each top bin.
func (b QuantileBand) Wealth(g grid.Grid) WealthBand {
	w := WealthBand{
		Probability: b.Probability,
		X:           append([]int(nil), b.X...),
		Lower:       make([]float64, len(b.YBottom)),
		Upper:       make([]float64, len(b.YTop)),
	}
	for i, bin := range b.YBottom {
		w.Lower[i] = g.Boundaries[bin]
	}
	for i, bin := range b.YTop {
		w.Upper[i] = g.Boundaries[bin+1]
	}
	return w
}
