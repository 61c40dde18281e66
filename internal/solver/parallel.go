package solver

import (
	"context"
	"runtime"

	"github.com/rgehrsitz/glidepath/internal/domain"
	"github.com/rgehrsitz/glidepath/internal/transition"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// DefaultWorkgroupSize is the number of bins one workgroup evaluates.
const DefaultWorkgroupSize = 64

// ambiguousSentinel marks a tied bin in a dispatch's strategy output buffer.
const ambiguousSentinel int32 = -1

// Parallel evaluates each period as one dispatch over ceil(bins/WorkgroupSize)
// workgroups. Periods run strictly latest-first.
type Parallel struct {
	TieTolerance  float64
	WorkgroupSize int
	// Workers bounds concurrently running workgroups. Zero means GOMAXPROCS.
	Workers int
}

// Name implements Backend.
func (b *Parallel) Name() string { return "parallel" }

// dispatch is the set of resources bound for one period.
type dispatch struct {
	ambiguous   int32
	period      int
	bins        int
	strategies  int
	tolerance   float64
	values      []float64
	starts      []int
	widths      []int
	offsets     []int
	nextUtility []float64
	outStrategy []int32
	outUtility  []float64
}

// Solve implements Backend.
func (b *Parallel) Solve(ctx context.Context, t *transition.Tensor, terminal []float64) (*Policy, error) {
	policy, err := newPolicy(t, terminal)
	if err != nil {
		return nil, err
	}
	size := b.WorkgroupSize
	if size <= 0 {
		size = DefaultWorkgroupSize
	}
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	groups := (t.Bins() + size - 1) / size

	for p := t.Periods() - 1; p >= 0; p-- {
		buf := t.Slice(p).Buffers()
		d := &dispatch{
			ambiguous:   ambiguousSentinel,
			period:      p,
			bins:        t.Bins(),
			strategies:  t.Strategies(),
			tolerance:   tolerance(b.TieTolerance),
			values:      buf.Values,
			starts:      buf.Starts,
			widths:      buf.Widths,
			offsets:     buf.Offsets,
			nextUtility: policy.Values[p+1],
			outStrategy: make([]int32, t.Bins()),
			outUtility:  make([]float64, t.Bins()),
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for w := 0; w < groups; w++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				d.run(w*size, min((w+1)*size, d.bins))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		choices := make([]domain.Choice, t.Bins())
		for i, s := range d.outStrategy {
			if s != d.ambiguous {
				choices[i] = domain.Chosen(int(s))
			}
		}
		policy.Choices[p] = choices
		policy.Values[p] = d.outUtility
	}
	return policy, nil
}

// run evaluates bins [lo, hi). Each invocation writes only its own output range.
func (d *dispatch) run(lo, hi int) {
	evs := make([]float64, d.strategies)
	for i := lo; i < hi; i++ {
		for s := range evs {
			k := i*d.strategies + s
			off, start, width := d.offsets[k], d.starts[k], d.widths[k]
			evs[s] = floats.Dot(d.values[off:off+width], d.nextUtility[start:start+width])
		}
		choice, value := selectBest(evs, d.tolerance)
		d.outStrategy[i] = d.ambiguous
		if idx, ok := choice.Index(); ok {
			d.outStrategy[i] = int32(idx)
		}
		d.outUtility[i] = value
	}
}
