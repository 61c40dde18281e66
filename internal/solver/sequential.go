package solver

import (
	"context"

	"github.com/rgehrsitz/glidepath/internal/domain"
	"github.com/rgehrsitz/glidepath/internal/transition"
	"gonum.org/v1/gonum/floats"
)

// Sequential evaluates the recurrence on the calling goroutine.
type Sequential struct {
	TieTolerance float64
}

// Name implements Backend.
func (s *Sequential) Name() string { return "sequential" }

// Solve implements Backend.
func (s *Sequential) Solve(ctx context.Context, t *transition.Tensor, terminal []float64) (*Policy, error) {
	policy, err := newPolicy(t, terminal)
	if err != nil {
		return nil, err
	}
	tol := tolerance(s.TieTolerance)
	evs := make([]float64, t.Strategies())

	for p := t.Periods() - 1; p >= 0; p-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slice := t.Slice(p)
		next := policy.Values[p+1]
		choices := make([]domain.Choice, t.Bins())
		values := make([]float64, t.Bins())
		for i := range choices {
			for k := range evs {
				b := slice.Band(i, k)
				evs[k] = floats.Dot(b.Probs, next[b.Start:b.End()])
			}
			choices[i], values[i] = selectBest(evs, tol)
		}
		policy.Choices[p] = choices
		policy.Values[p] = values
	}
	return policy, nil
}
