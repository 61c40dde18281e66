package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/rgehrsitz/glidepath/internal/distribution"
	"github.com/rgehrsitz/glidepath/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoice(t *testing.T) {
	var zero Choice
	assert.True(t, zero.IsAmbiguous())
	assert.Equal(t, Ambiguous, zero)

	c := Chosen(0)
	idx, ok := c.Index()
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.False(t, c.IsAmbiguous())
	assert.NotEqual(t, Ambiguous, c)

	assert.Equal(t, 3, Ambiguous.IndexOr(3))
	assert.Equal(t, 2, Chosen(2).IndexOr(3))
	assert.Equal(t, "ambiguous", Ambiguous.String())
	assert.Equal(t, "1", Chosen(1).String())
}

func TestChoice_JSON(t *testing.T) {
	data, err := json.Marshal([]Choice{Chosen(1), Ambiguous, Chosen(0)})
	require.NoError(t, err)
	assert.JSONEq(t, `[1, null, 0]`, string(data))

	var back []Choice
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []Choice{Chosen(1), Ambiguous, Chosen(0)}, back)
}

func validProblem(t *testing.T) *Problem {
	t.Helper()
	g, err := grid.Linear(0, 100, 10)
	require.NoError(t, err)
	d, err := distribution.NewNormal(0.05, 0.1)
	require.NoError(t, err)
	s, err := NewStrategy("stocks", d)
	require.NoError(t, err)
	return &Problem{
		Periods:    2,
		Cashflows:  []float64{10, 10},
		Grid:       g,
		Strategies: []Strategy{s},
		Utility:    func(w float64) float64 { return w },
	}
}

func TestProblem_Validate(t *testing.T) {
	require.NoError(t, validProblem(t).Validate())

	tests := []struct {
		name   string
		mutate func(p *Problem)
	}{
		{"zero periods", func(p *Problem) { p.Periods = 0; p.Cashflows = nil }},
		{"cashflow count", func(p *Problem) { p.Cashflows = []float64{1} }},
		{"NaN cashflow", func(p *Problem) { p.Cashflows[1] = math.NaN() }},
		{"bad grid", func(p *Problem) { p.Grid.Boundaries[3] = p.Grid.Boundaries[2] }},
		{"no strategies", func(p *Problem) { p.Strategies = nil }},
		{"nil distribution", func(p *Problem) { p.Strategies[0].Distribution = nil }},
		{"no utility", func(p *Problem) { p.Utility = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProblem(t)
			tt.mutate(p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidProblem)
		})
	}
}

func TestProblem_Views(t *testing.T) {
	p := validProblem(t)
	assert.Equal(t, []string{"stocks"}, p.StrategyNames())
	assert.Len(t, p.Distributions(), 1)
	assert.Equal(t, 0.05, p.Spreads()[0].Location())
}

func TestSolution_Counts(t *testing.T) {
	s := Solution{
		OptimalStrategies: [][]Choice{{Chosen(0), Ambiguous}, {Ambiguous, Ambiguous}},
		ExpectedUtilities: [][]float64{{1, 2}, {1, 2}, {1, 2}},
	}
	assert.Equal(t, 2, s.Periods())
	assert.Equal(t, 2, s.Bins())
	assert.Equal(t, 3, s.Ambiguous())
}
