package distribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_BuiltinKinds(t *testing.T) {
	tests := []struct {
		kind     string
		args     []float64
		wantType Distribution
	}{
		{"normal", []float64{0.05, 0.1}, &Normal{}},
		{"Gaussian", []float64{0.05, 0.1}, &Normal{}},
		{"lognormal", []float64{0.05, 0.1}, &LogNormal{}},
		{" log-normal ", []float64{0.05, 0.1}, &LogNormal{}},
		{"cauchy", []float64{0, 0.1}, &Cauchy{}},
		{"delta", []float64{0.01}, &Delta{}},
		{"fixed", []float64{0.01}, &Delta{}},
		{"normal", []float64{0.05, 0}, &Delta{}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			d, err := New(tt.kind, tt.args...)
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, d)
		})
	}
}

func TestNew_Failures(t *testing.T) {
	_, err := New("weibull", 1, 2)
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = New("normal", 1)
	assert.ErrorIs(t, err, ErrArgumentCount)

	_, err = New("delta", 1, 2)
	assert.ErrorIs(t, err, ErrArgumentCount)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register("Cash", 0, func([]float64) (Distribution, error) { return NewDelta(0) })

	d, err := r.Create("cash")
	require.NoError(t, err)
	assert.Equal(t, 0.0, d.Location())

	arity, ok := r.Arity("CASH")
	assert.True(t, ok)
	assert.Equal(t, 0, arity)
	assert.Contains(t, r.Kinds(), "cash")
	assert.NotContains(t, Kinds(), "cash")
}
