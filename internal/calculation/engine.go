package calculation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rgehrsitz/glidepath/internal/domain"
	"github.com/rgehrsitz/glidepath/internal/grid"
	"github.com/rgehrsitz/glidepath/internal/solver"
)

// CalculationEngine runs the solve pipeline: validate, extend the grid, build the
// transition tensor, run backward induction, resolve ties and crop to the caller's grid.
type CalculationEngine struct {
	Backend      solver.Backend
	Logger       Logger
	MaxOuterBins int
	Cache        *TensorCache
}

// NewCalculationEngine creates an engine with the sequential back-end.
func NewCalculationEngine() *CalculationEngine {
	return NewCalculationEngineWithBackend(&solver.Sequential{})
}

// NewCalculationEngineWithBackend creates an engine that solves with backend.
func NewCalculationEngineWithBackend(backend solver.Backend) *CalculationEngine {
	return &CalculationEngine{
		Backend:      backend,
		Logger:       NopLogger{},
		MaxOuterBins: grid.DefaultMaxOuterBins,
		Cache:        NewTensorCache(DefaultCacheSize),
	}
}

// SetLogger sets the logger. nil restores the no-op logger.
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

// Solve runs the full pipeline on p. Validation failures are returned as *SolveError
// and nothing is solved.
func (ce *CalculationEngine) Solve(ctx context.Context, p *domain.Problem) (*Result, error) {
	start := time.Now()
	if err := p.Validate(); err != nil {
		return nil, &SolveError{Stage: StageValidate, Message: "problem rejected", Cause: err}
	}

	ext, err := grid.Extend(p.Grid, p.Spreads(), p.Cashflows, grid.ExtendOptions{MaxOuterBins: ce.MaxOuterBins})
	if err != nil {
		return nil, &SolveError{Stage: StageExtend, Message: "cannot extend grid", Cause: err}
	}
	ce.Logger.Debugf("extended grid from %d to %d bins", p.Grid.Bins(), ext.Grid.Bins())

	terminal, err := terminalUtility(p.Utility, ext.Grid.Values)
	if err != nil {
		return nil, &SolveError{Stage: StageUtility, Message: "cannot evaluate terminal utility", Cause: err}
	}

	buildStart := time.Now()
	tensor, cached, err := ce.cache().Get(ctx, ext.Grid, p.Distributions(), p.Cashflows)
	if err != nil {
		return nil, &SolveError{Stage: StageBuild, Message: "cannot build transition tensor", Cause: err}
	}
	ce.Logger.Debugf("transition tensor: %d periods, %d unique slices, cached=%t (%s)",
		tensor.Periods(), tensor.UniqueSlices(), cached, time.Since(buildStart))

	solveStart := time.Now()
	policy, err := ce.Backend.Solve(ctx, tensor, terminal)
	if err != nil {
		return nil, &SolveError{Stage: StageSolve, Message: fmt.Sprintf("%s backend failed", ce.Backend.Name()), Cause: err}
	}
	ce.Logger.Debugf("%s backend solved in %s", ce.Backend.Name(), time.Since(solveStart))

	choices := solver.ResolveTies(policy.Choices)
	result := newResult(p, ext, tensor, choices, policy.Values)
	if n := result.Solution.Ambiguous(); n > 0 {
		ce.Logger.Debugf("%d cells remain ambiguous after tie resolution", n)
	}
	ce.Logger.Infof("solved %q: %d periods x %d bins x %d strategies in %s",
		p.Name, p.Periods, p.Grid.Bins(), len(p.Strategies), time.Since(start))
	return result, nil
}

func (ce *CalculationEngine) cache() *TensorCache {
	if ce.Cache == nil {
		ce.Cache = NewTensorCache(DefaultCacheSize)
	}
	return ce.Cache
}

func terminalUtility(u domain.UtilityFunc, values []float64) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = u(v)
		if math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
			return nil, fmt.Errorf("%w: u(%g) = %g", ErrNonFiniteUtility, v, out[i])
		}
	}
	return out, nil
}
