package domain

// Solution is the optimal policy on the caller's wealth grid.
//
// OptimalStrategies has one row per period; ExpectedUtilities has one extra row,
// index Periods, holding the terminal utility.
type Solution struct {
	StrategyNames     []string    `json:"strategyNames"`
	OptimalStrategies [][]Choice  `json:"optimalStrategies"`
	ExpectedUtilities [][]float64 `json:"expectedUtilities"`
}

// Periods returns the number of decision periods.
func (s *Solution) Periods() int { return len(s.OptimalStrategies) }

// Bins returns the number of wealth bins.
func (s *Solution) Bins() int {
	if len(s.ExpectedUtilities) == 0 {
		return 0
	}
	return len(s.ExpectedUtilities[0])
}

// Ambiguous counts cells left unresolved after tie resolution.
func (s *Solution) Ambiguous() int {
	n := 0
	for _, row := range s.OptimalStrategies {
		for _, c := range row {
			if c.IsAmbiguous() {
				n++
			}
		}
	}
	return n
}
