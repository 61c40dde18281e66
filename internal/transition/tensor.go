// Package transition builds the band-sparse Markov transition tensor between wealth
// bins and derives the optimal-strategy tensor used for forward simulation.
package transition

import (
	"errors"
	"fmt"
)

// ErrShape is returned when bands or indices do not fit the tensor's dimensions.
var ErrShape = errors.New("transition tensor shape mismatch")

// Band is the contiguous run of ending bins [Start, Start+len(Probs)) reachable
// from one starting bin. Probs is shared with the tensor and must not be modified.
type Band struct {
	Start int
	Probs []float64
}

// End returns one past the last ending bin.
func (b Band) End() int { return b.Start + len(b.Probs) }

// Buffers are the flat arrays backing one tensor slice, indexed by
// bin*strategies + strategy. Values[Offsets[k] : Offsets[k]+Widths[k]] holds band k.
type Buffers struct {
	Starts  []int
	Widths  []int
	Offsets []int
	Values  []float64
}

// Slice holds every (bin, strategy) band for one deduplicated period.
type Slice struct {
	bins       int
	strategies int
	buf        Buffers
}

func newSlice(bins, strategies int) *Slice {
	n := bins * strategies
	return &Slice{
		bins:       bins,
		strategies: strategies,
		buf: Buffers{
			Starts:  make([]int, 0, n),
			Widths:  make([]int, 0, n),
			Offsets: make([]int, 0, n),
		},
	}
}

// append adds the next band in (bin, strategy) order.
func (s *Slice) append(start int, probs []float64) {
	s.buf.Starts = append(s.buf.Starts, start)
	s.buf.Widths = append(s.buf.Widths, len(probs))
	s.buf.Offsets = append(s.buf.Offsets, len(s.buf.Values))
	s.buf.Values = append(s.buf.Values, probs...)
}

// Band returns the band for a starting bin and strategy.
func (s *Slice) Band(bin, strategy int) Band {
	k := bin*s.strategies + strategy
	off := s.buf.Offsets[k]
	return Band{Start: s.buf.Starts[k], Probs: s.buf.Values[off : off+s.buf.Widths[k] : off+s.buf.Widths[k]]}
}

// Buffers exposes the flat backing arrays. They must be treated as read-only.
func (s *Slice) Buffers() Buffers { return s.buf }

// Tensor is the period × starting-bin × strategy × ending-bin transition tensor.
// Periods with the same cashflow share one Slice.
type Tensor struct {
	bins           int
	strategies     int
	slices         []*Slice
	periodToUnique []int
}

// Periods returns the number of periods.
func (t *Tensor) Periods() int { return len(t.periodToUnique) }

// Bins returns the number of wealth bins.
func (t *Tensor) Bins() int { return t.bins }

// Strategies returns the number of strategies.
func (t *Tensor) Strategies() int { return t.strategies }

// UniqueSlices returns how many distinct slices back the periods.
func (t *Tensor) UniqueSlices() int { return len(t.slices) }

// UniqueIndex returns which deduplicated slice a period uses.
func (t *Tensor) UniqueIndex(period int) int { return t.periodToUnique[period] }

// Slice returns the slice for a period.
func (t *Tensor) Slice(period int) *Slice { return t.slices[t.periodToUnique[period]] }

// Band returns the band for (period, bin, strategy).
func (t *Tensor) Band(period, bin, strategy int) Band {
	return t.Slice(period).Band(bin, strategy)
}

// FromBands assembles a tensor from explicit bands, indexed bands[unique][bin][strategy].
func FromBands(periodToUnique []int, bands [][][]Band) (*Tensor, error) {
	if len(periodToUnique) == 0 || len(bands) == 0 {
		return nil, fmt.Errorf("%w: empty tensor", ErrShape)
	}
	bins := len(bands[0])
	if bins == 0 || len(bands[0][0]) == 0 {
		return nil, fmt.Errorf("%w: no bins or strategies", ErrShape)
	}
	strategies := len(bands[0][0])

	t := &Tensor{
		bins:           bins,
		strategies:     strategies,
		periodToUnique: append([]int(nil), periodToUnique...),
	}
	for _, u := range periodToUnique {
		if u < 0 || u >= len(bands) {
			return nil, fmt.Errorf("%w: period maps to slice %d of %d", ErrShape, u, len(bands))
		}
	}
	for u, perBin := range bands {
		if len(perBin) != bins {
			return nil, fmt.Errorf("%w: slice %d has %d bins, want %d", ErrShape, u, len(perBin), bins)
		}
		s := newSlice(bins, strategies)
		for i, perStrategy := range perBin {
			if len(perStrategy) != strategies {
				return nil, fmt.Errorf("%w: slice %d bin %d has %d strategies, want %d", ErrShape, u, i, len(perStrategy), strategies)
			}
			for _, b := range perStrategy {
				if b.Start < 0 || b.End() > bins || len(b.Probs) == 0 {
					return nil, fmt.Errorf("%w: band [%d, %d) outside %d bins", ErrShape, b.Start, b.End(), bins)
				}
				s.append(b.Start, b.Probs)
			}
		}
		t.slices = append(t.slices, s)
	}
	return t, nil
}
