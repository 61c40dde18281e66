package solver

import (
	"context"
	"math"
	"testing"

	"github.com/rgehrsitz/glidepath/internal/distribution"
	"github.com/rgehrsitz/glidepath/internal/domain"
	"github.com/rgehrsitz/glidepath/internal/grid"
	"github.com/rgehrsitz/glidepath/internal/transition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stayOrUp has 3 bins and two strategies: stay put, or move one bin up (capped).
func stayOrUp(t *testing.T, periods int) *transition.Tensor {
	t.Helper()
	stay := func(i int) transition.Band { return transition.Band{Start: i, Probs: []float64{1}} }
	up := func(i int) transition.Band { return transition.Band{Start: min(i+1, 2), Probs: []float64{1}} }
	bands := [][][]transition.Band{{
		{stay(0), up(0)},
		{stay(1), up(1)},
		{stay(2), up(2)},
	}}
	tensor, err := transition.FromBands(make([]int, periods), bands)
	require.NoError(t, err)
	return tensor
}

func backends() []Backend {
	return []Backend{
		&Sequential{},
		&Parallel{WorkgroupSize: 2, Workers: 3},
	}
}

func TestSolveSmallRecurrence(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.Name(), func(t *testing.T) {
			policy, err := b.Solve(context.Background(), stayOrUp(t, 1), []float64{0, 1, 2})
			require.NoError(t, err)

			assert.Equal(t, []domain.Choice{domain.Chosen(1), domain.Chosen(1), domain.Ambiguous}, policy.Choices[0])
			assert.Equal(t, []float64{1, 2, 2}, policy.Values[0])
			assert.Equal(t, []float64{0, 1, 2}, policy.Values[1])
		})
	}
}

func TestSolveMultiPeriod(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.Name(), func(t *testing.T) {
			policy, err := b.Solve(context.Background(), stayOrUp(t, 2), []float64{0, 1, 2})
			require.NoError(t, err)

			require.Len(t, policy.Choices, 2)
			require.Len(t, policy.Values, 3)
			// With two steps left every bin can reach the top, so bin 0 still prefers up.
			assert.Equal(t, []float64{2, 2, 2}, policy.Values[0])
			assert.Equal(t, domain.Chosen(1), policy.Choices[0][0])
			assert.True(t, policy.Choices[0][1].IsAmbiguous(), "stay then up equals up then stay")
		})
	}
}

func TestSolveRejectsTerminalShape(t *testing.T) {
	for _, b := range backends() {
		_, err := b.Solve(context.Background(), stayOrUp(t, 1), []float64{0, 1})
		assert.ErrorIs(t, err, ErrTerminalShape, b.Name())
	}
}

func TestSolveHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, b := range backends() {
		_, err := b.Solve(ctx, stayOrUp(t, 3), []float64{0, 1, 2})
		assert.ErrorIs(t, err, context.Canceled, b.Name())
	}
}

func realisticTensor(t *testing.T) (*transition.Tensor, []float64) {
	t.Helper()
	g, err := grid.Linear(0, 100, 40)
	require.NoError(t, err)

	var dists []distribution.Distribution
	var spreads []grid.Spread
	for _, args := range [][2]float64{{0.02, 0.01}, {0.05, 0.1}, {0.08, 0.2}} {
		d, err := distribution.NewNormal(args[0], args[1])
		require.NoError(t, err)
		dists = append(dists, d)
		spreads = append(spreads, d)
	}
	cashflows := []float64{5, 5, 5, -10, -10, -10}
	ext, err := grid.Extend(g, spreads, cashflows, grid.ExtendOptions{})
	require.NoError(t, err)

	tensor, err := transition.Build(ext.Grid, dists, cashflows)
	require.NoError(t, err)

	terminal := make([]float64, ext.Grid.Bins())
	for i, v := range ext.Grid.Values {
		terminal[i] = math.Log(math.Max(v, 1))
	}
	return tensor, terminal
}

func TestBackendsAgree(t *testing.T) {
	tensor, terminal := realisticTensor(t)

	seq, err := (&Sequential{}).Solve(context.Background(), tensor, terminal)
	require.NoError(t, err)
	par, err := (&Parallel{}).Solve(context.Background(), tensor, terminal)
	require.NoError(t, err)

	for p := range seq.Choices {
		assert.Equal(t, seq.Choices[p], par.Choices[p], "period %d", p)
	}
	for p := range seq.Values {
		assert.InDeltaSlice(t, seq.Values[p], par.Values[p], 1e-6, "period %d", p)
	}
}

func TestIdenticalStrategiesAreAmbiguous(t *testing.T) {
	g := grid.Grid{
		Boundaries: []float64{math.Inf(-1), 0, 1, 2, math.Inf(1)},
		Values:     []float64{0, 0.5, 1.5, 2},
	}
	d, err := distribution.NewNormal(0.05, 0.2)
	require.NoError(t, err)
	same, err := distribution.NewNormal(0.05, 0.2)
	require.NoError(t, err)
	tensor, err := transition.Build(g, []distribution.Distribution{d, same}, []float64{0})
	require.NoError(t, err)

	for _, b := range backends() {
		policy, err := b.Solve(context.Background(), tensor, []float64{0, 1, 2, 3})
		require.NoError(t, err)
		for i, c := range policy.Choices[0] {
			assert.True(t, c.IsAmbiguous(), "%s bin %d", b.Name(), i)
		}
	}
}

func TestSelectBest(t *testing.T) {
	tests := []struct {
		name  string
		evs   []float64
		want  domain.Choice
		value float64
	}{
		{"single", []float64{3}, domain.Chosen(0), 3},
		{"clear winner", []float64{1, 5, 2}, domain.Chosen(1), 5},
		{"exact tie", []float64{2, 2}, domain.Ambiguous, 2},
		{"within relative tolerance", []float64{1e6, 1e6 + 1e-5}, domain.Ambiguous, 1e6 + 1e-5},
		{"outside tolerance", []float64{1, 1 + 1e-6}, domain.Chosen(1), 1 + 1e-6},
		{"negative values", []float64{-3, -1}, domain.Chosen(1), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, value := selectBest(tt.evs, DefaultTieTolerance)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestNewBackend(t *testing.T) {
	b, err := New("parallel", Options{WorkgroupSize: 32})
	require.NoError(t, err)
	assert.Equal(t, "parallel", b.Name())
	assert.Equal(t, 32, b.(*Parallel).WorkgroupSize)

	b, err = New("", Options{})
	require.NoError(t, err)
	assert.Equal(t, "sequential", b.Name())

	_, err = New("gpu", Options{})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
