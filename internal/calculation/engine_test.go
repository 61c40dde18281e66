package calculation

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/rgehrsitz/glidepath/internal/distribution"
	"github.com/rgehrsitz/glidepath/internal/domain"
	"github.com/rgehrsitz/glidepath/internal/grid"
	"github.com/rgehrsitz/glidepath/internal/solver"
	"github.com/rgehrsitz/glidepath/internal/utility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProblem(t *testing.T) *domain.Problem {
	t.Helper()
	g, err := grid.Linear(0, 200, 20)
	require.NoError(t, err)

	var strategies []domain.Strategy
	for _, cfg := range []struct {
		name       string
		loc, scale float64
	}{{"bonds", 0.02, 0.03}, {"stocks", 0.07, 0.18}} {
		d, err := distribution.NewNormal(cfg.loc, cfg.scale)
		require.NoError(t, err)
		s, err := domain.NewStrategy(cfg.name, d)
		require.NoError(t, err)
		strategies = append(strategies, s)
	}

	u, err := utility.CRRA(2, 1)
	require.NoError(t, err)
	return &domain.Problem{
		Name:       "retirement",
		Periods:    5,
		Cashflows:  []float64{10, 10, -15, -15, -15},
		Grid:       g,
		Strategies: strategies,
		Utility:    u,
	}
}

func TestNewCalculationEngine(t *testing.T) {
	engine := NewCalculationEngine()

	assert.NotNil(t, engine, "Should create engine")
	assert.Equal(t, "sequential", engine.Backend.Name(), "Should default to the sequential backend")
	assert.NotNil(t, engine.Logger, "Should initialize logger")
	assert.NotNil(t, engine.Cache, "Should initialize tensor cache")
}

func TestCalculationEngine_SetLogger(t *testing.T) {
	engine := NewCalculationEngine()

	customLogger := &TestLogger{}
	engine.SetLogger(customLogger)
	assert.Equal(t, customLogger, engine.Logger, "Should set custom logger")

	engine.SetLogger(nil)
	assert.NotNil(t, engine.Logger, "Should not be nil")
	assert.IsType(t, NopLogger{}, engine.Logger, "Should be no-op logger")
}

func TestSolveShapes(t *testing.T) {
	engine := NewCalculationEngine()
	logger := &TestLogger{}
	engine.SetLogger(logger)
	p := testProblem(t)

	result, err := engine.Solve(context.Background(), p)
	require.NoError(t, err)

	sol := result.Solution
	assert.Equal(t, []string{"bonds", "stocks"}, sol.StrategyNames)
	assert.Equal(t, 5, sol.Periods())
	assert.Equal(t, 20, sol.Bins())
	assert.Len(t, sol.ExpectedUtilities, 6)
	for _, row := range sol.OptimalStrategies {
		assert.Len(t, row, 20)
	}
	assert.NotEmpty(t, logger.messages, "Should log pipeline progress")
}

func TestSolveCroppedMatchesExtended(t *testing.T) {
	result, err := NewCalculationEngine().Solve(context.Background(), testProblem(t))
	require.NoError(t, err)

	ext := result.Extension
	for p, row := range result.Solution.OptimalStrategies {
		for i, c := range row {
			assert.Equal(t, result.Choices[p][ext.ToExtended(i)], c, "period %d bin %d", p, i)
		}
	}
	for p, row := range result.Solution.ExpectedUtilities {
		assert.InDeltaSlice(t, result.Values[p][ext.Start:ext.End], row, 1e-12, "period %d", p)
	}
}

func TestSolveTerminalRowIsUtility(t *testing.T) {
	p := testProblem(t)
	result, err := NewCalculationEngine().Solve(context.Background(), p)
	require.NoError(t, err)

	last := result.Solution.ExpectedUtilities[p.Periods]
	for i, v := range p.Grid.Values {
		assert.InDelta(t, p.Utility(v), last[i], 1e-12, "bin %d", i)
	}
}

func TestSolveBackendsAgree(t *testing.T) {
	p := testProblem(t)
	seq, err := NewCalculationEngine().Solve(context.Background(), p)
	require.NoError(t, err)
	par, err := NewCalculationEngineWithBackend(&solver.Parallel{WorkgroupSize: 8}).Solve(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, seq.Solution.OptimalStrategies, par.Solution.OptimalStrategies)
	for i := range seq.Solution.ExpectedUtilities {
		assert.InDeltaSlice(t, seq.Solution.ExpectedUtilities[i], par.Solution.ExpectedUtilities[i], 1e-6)
	}
}

// targetProblem mixes a log-normal strategy, a riskless one and a crash-prone
// compound under a step utility.
func targetProblem(t *testing.T) *domain.Problem {
	t.Helper()
	g, err := grid.Linear(0, 100, 25)
	require.NoError(t, err)

	growth, err := distribution.NewLogNormal(0.05, 0.15)
	require.NoError(t, err)
	cash, err := distribution.NewDelta(0.01)
	require.NoError(t, err)
	normal, err := distribution.NewNormal(0.06, 0.12)
	require.NoError(t, err)
	crash, err := distribution.NewDelta(-0.4)
	require.NoError(t, err)
	mixed, err := distribution.NewCompound(
		distribution.Component{Weight: 0.9, Distribution: normal},
		distribution.Component{Weight: 0.1, Distribution: crash},
	)
	require.NoError(t, err)

	var strategies []domain.Strategy
	for _, d := range []distribution.Distribution{growth, cash, mixed} {
		s, err := domain.NewStrategy(d.String(), d)
		require.NoError(t, err)
		strategies = append(strategies, s)
	}
	u, err := utility.Target(60)
	require.NoError(t, err)
	return &domain.Problem{
		Name:       "target",
		Periods:    4,
		Cashflows:  []float64{5, 5, -5, -5},
		Grid:       g,
		Strategies: strategies,
		Utility:    u,
	}
}

func TestExpectedUtilityNonDecreasingInWealth(t *testing.T) {
	problems := map[string]*domain.Problem{
		"crra":   testProblem(t),
		"target": targetProblem(t),
	}
	backends := map[string]solver.Backend{
		"sequential": &solver.Sequential{},
		"parallel":   &solver.Parallel{WorkgroupSize: 8, Workers: 3},
	}
	for pname, p := range problems {
		for bname, b := range backends {
			t.Run(pname+"/"+bname, func(t *testing.T) {
				result, err := NewCalculationEngineWithBackend(b).Solve(context.Background(), p)
				require.NoError(t, err)

				for period, row := range result.Solution.ExpectedUtilities {
					for i := 1; i < len(row); i++ {
						assert.GreaterOrEqual(t, row[i], row[i-1]-1e-9, "period %d bin %d", period, i)
					}
				}
			})
		}
	}
}

func TestSolveRejectsInvalidProblem(t *testing.T) {
	p := testProblem(t)
	p.Cashflows = p.Cashflows[:2]

	_, err := NewCalculationEngine().Solve(context.Background(), p)
	var solveErr *SolveError
	require.ErrorAs(t, err, &solveErr)
	assert.Equal(t, StageValidate, solveErr.Stage)
	assert.ErrorIs(t, err, domain.ErrInvalidProblem)
}

func TestSolveRejectsNonFiniteUtility(t *testing.T) {
	p := testProblem(t)
	p.Utility = math.Log // -Inf at the ruin value 0

	_, err := NewCalculationEngine().Solve(context.Background(), p)
	assert.ErrorIs(t, err, ErrNonFiniteUtility)
}

func TestSolveReusesTensorAcrossUtilities(t *testing.T) {
	engine := NewCalculationEngine()
	p := testProblem(t)

	first, err := engine.Solve(context.Background(), p)
	require.NoError(t, err)
	p.Utility = utility.Linear()
	second, err := engine.Solve(context.Background(), p)
	require.NoError(t, err)

	assert.Same(t, first.Tensor, second.Tensor)
	assert.Equal(t, 1, engine.Cache.Len())
}

func TestTrajectoryConservesMass(t *testing.T) {
	result, err := NewCalculationEngine().Solve(context.Background(), testProblem(t))
	require.NoError(t, err)

	rows, err := result.Trajectory(0, 10)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, 1.0, rows[0][10])
	for p, row := range rows {
		total := 0.0
		for _, m := range row {
			total += m
		}
		assert.InDelta(t, 1.0, total, 1e-6, "period %d", p)
	}

	fromWealth, err := result.TrajectoryFromWealth(0, result.Grid.Values[10])
	require.NoError(t, err)
	assert.Equal(t, rows, fromWealth)

	_, err = result.Trajectory(0, 20)
	assert.Error(t, err)
}

func TestQuantilesAreOrdered(t *testing.T) {
	result, err := NewCalculationEngine().Solve(context.Background(), testProblem(t))
	require.NoError(t, err)

	bands, err := result.Quantiles(1, 10, []float64{0.5, 0.9})
	require.NoError(t, err)
	require.Len(t, bands, 2)
	for _, b := range bands {
		assert.Equal(t, []int{1, 2, 3, 4, 5}, b.X)
		for k := range b.X {
			assert.LessOrEqual(t, b.YBottom[k], b.YTop[k])
		}
	}
	for k := range bands[0].X {
		assert.LessOrEqual(t, bands[1].YBottom[k], bands[0].YBottom[k], "wider band starts lower")
		assert.GreaterOrEqual(t, bands[1].YTop[k], bands[0].YTop[k], "wider band ends higher")
	}
}

func TestOptimalTransitionsIsShared(t *testing.T) {
	result, err := NewCalculationEngine().Solve(context.Background(), testProblem(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	got := make([]interface{}, 4)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			opt, err := result.OptimalTransitions()
			assert.NoError(t, err)
			got[i] = opt
		}()
	}
	wg.Wait()
	for _, opt := range got[1:] {
		assert.Same(t, got[0], opt)
	}
}

func TestSolveError(t *testing.T) {
	cause := errors.New("boom")
	err := &SolveError{Stage: StageBuild, Message: "cannot build", Cause: cause}
	assert.Equal(t, "build: cannot build: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "solve: stopped", (&SolveError{Stage: StageSolve, Message: "stopped"}).Error())
}

// TestLogger is a simple logger for testing
type TestLogger struct {
	mu       sync.Mutex
	messages []string
}

func (tl *TestLogger) add(msg string) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.messages = append(tl.messages, msg)
}

func (tl *TestLogger) Debugf(format string, args ...interface{}) { tl.add("DEBUG: " + format) }
func (tl *TestLogger) Infof(format string, args ...interface{})  { tl.add("INFO: " + format) }
func (tl *TestLogger) Warnf(format string, args ...interface{})  { tl.add("WARN: " + format) }
func (tl *TestLogger) Errorf(format string, args ...interface{}) { tl.add("ERROR: " + format) }
