package solver

import "github.com/rgehrsitz/glidepath/internal/domain"

// ResolveTies returns a copy of choices with each row passed through ResolveRow.
func ResolveTies(choices [][]domain.Choice) [][]domain.Choice {
	out := make([][]domain.Choice, len(choices))
	for p, row := range choices {
		out[p] = ResolveRow(row)
	}
	return out
}

// ResolveRow fills runs of ambiguous bins from their neighbours. A run touching the
// left edge takes the strategy just above it, one touching the right edge takes the
// one just below it, and an interior run is filled only when both neighbours agree.
// A row that is ambiguous throughout is returned unchanged.
func ResolveRow(row []domain.Choice) []domain.Choice {
	out := append([]domain.Choice(nil), row...)
	n := len(out)
	for i := 0; i < n; {
		if !out[i].IsAmbiguous() {
			i++
			continue
		}
		j := i
		for j < n && out[j].IsAmbiguous() {
			j++
		}

		fill := domain.Ambiguous
		switch {
		case i == 0 && j == n:
		case i == 0:
			fill = out[j]
		case j == n:
			fill = out[i-1]
		case out[i-1] == out[j]:
			fill = out[j]
		}
		for k := i; k < j; k++ {
			out[k] = fill
		}
		i = j
	}
	return out
}
