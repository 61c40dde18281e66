package output

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// FormatWealth renders a wealth value with thousands separators and at most two
// decimals; infinities render as -inf and +inf.
func FormatWealth(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return "nan"
	}
	d := decimal.NewFromFloat(v).Round(2)
	s := d.String()
	neg := d.IsNegative()
	if neg {
		s = s[1:]
	}
	intPart, frac := s, ""
	for i := range s {
		if s[i] == '.' {
			intPart, frac = s[:i], s[i:]
			break
		}
	}
	out := make([]byte, 0, len(intPart)+len(intPart)/3+len(frac)+1)
	if neg {
		out = append(out, '-')
	}
	for i := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, intPart[i])
	}
	return string(append(out, frac...))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
