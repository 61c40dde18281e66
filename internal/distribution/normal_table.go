package distribution

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// tableSigmas bounds the tabulated standard normal CDF to [-tableSigmas, tableSigmas].
	tableSigmas = 5.0
	tableSize   = 10001
	tableStep   = 2 * tableSigmas / (tableSize - 1)
)

// normalTable holds the standard normal CDF sampled on a uniform grid. It is built
// once per process on first use and never written afterwards.
var normalTable = sync.OnceValue(func() []float64 {
	table := make([]float64, tableSize)
	for i := range table {
		table[i] = distuv.UnitNormal.CDF(-tableSigmas + float64(i)*tableStep)
	}
	return table
})

// standardNormalCDF interpolates the table linearly and saturates outside it.
func standardNormalCDF(z float64) float64 {
	switch {
	case math.IsNaN(z):
		return math.NaN()
	case z <= -tableSigmas:
		return 0
	case z >= tableSigmas:
		return 1
	}

	table := normalTable()
	pos := (z + tableSigmas) / tableStep
	i := int(pos)
	if i >= tableSize-1 {
		return table[tableSize-1]
	}
	frac := pos - float64(i)
	return table[i] + frac*(table[i+1]-table[i])
}
