package utility

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltins(t *testing.T) {
	tests := []struct {
		kind string
		args []float64
		in   float64
		want float64
	}{
		{"linear", nil, 42, 42},
		{"log", []float64{1}, math.E, 1},
		{"log", []float64{1}, -5, 0},
		{"crra", []float64{2, 0.01}, 2, 0.5},
		{"crra", []float64{1, 1}, math.E, 1},
		{"cara", []float64{1}, 0, 0},
		{"target", []float64{100}, 100, 1},
		{"target", []float64{100}, 99.99, 0},
		{"LOG", []float64{1}, 1, 0},
	}
	for _, tt := range tests {
		u, err := New(tt.kind, tt.args...)
		require.NoError(t, err, tt.kind)
		assert.InDelta(t, tt.want, u(tt.in), 1e-12, "%s(%v) at %g", tt.kind, tt.args, tt.in)
	}
}

func TestCARAIsConcaveAndBounded(t *testing.T) {
	u, err := CARA(0.5)
	require.NoError(t, err)
	assert.Less(t, u(10)-u(9), u(1)-u(0))
	assert.Less(t, u(1000), 2.0)
}

func TestCreateErrors(t *testing.T) {
	_, err := New("quadratic")
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = New("log")
	assert.ErrorIs(t, err, ErrArgumentCount)

	_, err = New("log", 0)
	assert.ErrorIs(t, err, ErrInvalidArg)

	_, err = New("crra", -1, 1)
	assert.ErrorIs(t, err, ErrInvalidArg)

	_, err = New("cara", math.NaN())
	assert.ErrorIs(t, err, ErrInvalidArg)
}

func TestUsages(t *testing.T) {
	assert.Equal(t, []string{"cara(a)", "crra(gamma, floor)", "linear", "log(floor)", "target(threshold)"}, Usages())
}
