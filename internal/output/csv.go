package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// CSVFormatter writes one row per (period, bin) with the chosen strategy and its
// expected utility. Ambiguous cells have an empty strategy.
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(r *Report) ([]byte, error) {
	if r.Solution == nil {
		return nil, fmt.Errorf("report %q has no solution", r.Name)
	}
	sol := r.Solution
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"period", "bin", "wealth_low", "wealth_high", "strategy_index", "strategy", "expected_utility"})
	for p := 0; p < sol.Periods(); p++ {
		for i := 0; i < sol.Bins(); i++ {
			index, name := "", ""
			if k, ok := sol.OptimalStrategies[p][i].Index(); ok {
				index, name = strconv.Itoa(k), sol.StrategyNames[k]
			}
			_ = w.Write([]string{
				strconv.Itoa(p),
				strconv.Itoa(i),
				formatFloat(r.Grid.Boundaries[i]),
				formatFloat(r.Grid.Boundaries[i+1]),
				index,
				name,
				formatFloat(sol.ExpectedUtilities[p][i]),
			})
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// CSVBandsFormatter writes one row per (probability, period) quantile band.
type CSVBandsFormatter struct{}

func (CSVBandsFormatter) Name() string { return "csv-bands" }

func (CSVBandsFormatter) Format(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"probability", "period", "wealth_low", "wealth_high"})
	for _, band := range r.Bands {
		for k, x := range band.X {
			_ = w.Write([]string{
				formatFloat(band.Probability),
				strconv.Itoa(x),
				formatFloat(band.Lower[k]),
				formatFloat(band.Upper[k]),
			})
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}
