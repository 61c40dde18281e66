package solver

import (
	"testing"

	"github.com/rgehrsitz/glidepath/internal/domain"
	"github.com/stretchr/testify/assert"
)

func row(values ...int) []domain.Choice {
	out := make([]domain.Choice, len(values))
	for i, v := range values {
		if v >= 0 {
			out[i] = domain.Chosen(v)
		}
	}
	return out
}

const ambig = -1

func TestResolveRow(t *testing.T) {
	tests := []struct {
		name string
		in   []domain.Choice
		want []domain.Choice
	}{
		{"nothing ambiguous", row(0, 1, 2), row(0, 1, 2)},
		{"left edge takes right neighbour", row(ambig, ambig, 2, 1), row(2, 2, 2, 1)},
		{"right edge takes left neighbour", row(0, 1, ambig, ambig), row(0, 1, 1, 1)},
		{"interior with agreeing neighbours", row(1, ambig, ambig, 1), row(1, 1, 1, 1)},
		{"interior with differing neighbours", row(0, ambig, ambig, 1), row(0, ambig, ambig, 1)},
		{"mixed row", row(0, ambig, ambig, 1, ambig), row(0, ambig, ambig, 1, 1)},
		{"all ambiguous", row(ambig, ambig, ambig), row(ambig, ambig, ambig)},
		{"empty", row(), row()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRow(tt.in))
		})
	}
}

func TestResolveTiesDoesNotMutateInput(t *testing.T) {
	in := [][]domain.Choice{row(ambig, 1), row(0, ambig)}
	out := ResolveTies(in)

	assert.Equal(t, [][]domain.Choice{row(1, 1), row(0, 0)}, out)
	assert.True(t, in[0][0].IsAmbiguous())
	assert.True(t, in[1][1].IsAmbiguous())
}
