package transition

import (
	"fmt"

	"github.com/rgehrsitz/glidepath/internal/domain"
)

// OptimalTensor holds one band per (period, starting bin): the transition under
// the strategy chosen there. Ambiguous choices fall back to strategy 0.
type OptimalTensor struct {
	bands [][]Band
}

// Extract selects the chosen strategy's band for every period and bin.
func Extract(t *Tensor, choices [][]domain.Choice) (*OptimalTensor, error) {
	if len(choices) != t.Periods() {
		return nil, fmt.Errorf("%w: %d choice rows for %d periods", ErrShape, len(choices), t.Periods())
	}
	bands := make([][]Band, len(choices))
	for p, row := range choices {
		if len(row) != t.Bins() {
			return nil, fmt.Errorf("%w: period %d has %d choices for %d bins", ErrShape, p, len(row), t.Bins())
		}
		s := t.Slice(p)
		bands[p] = make([]Band, len(row))
		for i, c := range row {
			k := c.IndexOr(0)
			if k < 0 || k >= t.Strategies() {
				return nil, fmt.Errorf("%w: period %d bin %d chooses strategy %d of %d", ErrShape, p, i, k, t.Strategies())
			}
			bands[p][i] = s.Band(i, k)
		}
	}
	return &OptimalTensor{bands: bands}, nil
}

// NewOptimalTensor wraps explicit bands, indexed bands[period][bin].
func NewOptimalTensor(bands [][]Band) (*OptimalTensor, error) {
	if len(bands) == 0 || len(bands[0]) == 0 {
		return nil, fmt.Errorf("%w: empty optimal tensor", ErrShape)
	}
	bins := len(bands[0])
	for p, row := range bands {
		if len(row) != bins {
			return nil, fmt.Errorf("%w: period %d has %d bins, want %d", ErrShape, p, len(row), bins)
		}
		for i, b := range row {
			if b.Start < 0 || b.End() > bins || len(b.Probs) == 0 {
				return nil, fmt.Errorf("%w: period %d bin %d band [%d, %d) outside %d bins", ErrShape, p, i, b.Start, b.End(), bins)
			}
		}
	}
	return &OptimalTensor{bands: bands}, nil
}

// Periods returns the number of periods.
func (o *OptimalTensor) Periods() int { return len(o.bands) }

// Bins returns the number of wealth bins.
func (o *OptimalTensor) Bins() int { return len(o.bands[0]) }

// Band returns the band taken from a bin in a period.
func (o *OptimalTensor) Band(period, bin int) Band { return o.bands[period][bin] }
