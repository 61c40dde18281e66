package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rgehrsitz/glidepath/internal/distribution"
	"github.com/rgehrsitz/glidepath/internal/domain"
	"github.com/rgehrsitz/glidepath/internal/grid"
	"github.com/rgehrsitz/glidepath/internal/utility"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a problem file fails validation.
var ErrInvalidConfig = errors.New("invalid problem file")

const compoundKind = "compound"

// InputParser handles parsing of problem files
type InputParser struct {
	Distributions *distribution.Registry
	Utilities     *utility.Registry
}

// NewInputParser creates a parser with the built-in distribution and utility kinds.
func NewInputParser() *InputParser {
	return &InputParser{
		Distributions: distribution.NewRegistry(),
		Utilities:     utility.NewRegistry(),
	}
}

// LoadFromFile reads and validates a YAML problem file.
func (ip *InputParser) LoadFromFile(filename string) (*ProblemFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	pf, err := ip.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return pf, nil
}

// Parse decodes and validates a YAML problem document. Unknown fields are rejected.
func (ip *InputParser) Parse(data []byte) (*ProblemFile, error) {
	var pf ProblemFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := ip.ValidateConfiguration(&pf); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &pf, nil
}

// ValidateConfiguration checks a problem file without building distributions.
func (ip *InputParser) ValidateConfiguration(pf *ProblemFile) error {
	if pf.Periods <= 0 {
		return fmt.Errorf("%w: periods must be positive, got %d", ErrInvalidConfig, pf.Periods)
	}
	if err := validateCashflows(pf); err != nil {
		return err
	}
	if err := validateGrid(&pf.Grid); err != nil {
		return err
	}
	if len(pf.Strategies) == 0 {
		return fmt.Errorf("%w: no strategies", ErrInvalidConfig)
	}
	seen := make(map[string]bool)
	for i, s := range pf.Strategies {
		if s.Name == "" {
			return fmt.Errorf("%w: strategy %d has no name", ErrInvalidConfig, i)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate strategy name %q", ErrInvalidConfig, s.Name)
		}
		seen[s.Name] = true
		if err := ip.validateStrategy(&s); err != nil {
			return fmt.Errorf("strategy %q: %w", s.Name, err)
		}
	}
	if pf.Utility.Kind == "" {
		return fmt.Errorf("%w: utility kind is required", ErrInvalidConfig)
	}
	if pf.Trajectory != nil {
		if pf.Trajectory.Period < 0 || pf.Trajectory.Period > pf.Periods {
			return fmt.Errorf("%w: trajectory period %d not in [0, %d]", ErrInvalidConfig, pf.Trajectory.Period, pf.Periods)
		}
		for _, q := range pf.Trajectory.Quantiles {
			if !(q >= 0 && q <= 1) {
				return fmt.Errorf("%w: trajectory quantile %g not in [0, 1]", ErrInvalidConfig, q)
			}
		}
	}
	return nil
}

func validateCashflows(pf *ProblemFile) error {
	switch {
	case len(pf.Cashflows) > 0 && len(pf.CashflowSchedule) > 0:
		return fmt.Errorf("%w: give either cashflows or cashflow_schedule, not both", ErrInvalidConfig)
	case len(pf.Cashflows) > 0 && len(pf.Cashflows) != pf.Periods:
		return fmt.Errorf("%w: %d cashflows for %d periods", ErrInvalidConfig, len(pf.Cashflows), pf.Periods)
	}
	for i, seg := range pf.CashflowSchedule {
		if seg.From < 0 || seg.To < seg.From || seg.To >= pf.Periods {
			return fmt.Errorf("%w: cashflow_schedule segment %d covers [%d, %d] outside [0, %d)",
				ErrInvalidConfig, i, seg.From, seg.To, pf.Periods)
		}
	}
	return nil
}

func validateGrid(g *GridConfig) error {
	if len(g.Boundaries) > 0 {
		if g.Kind != "" {
			return fmt.Errorf("%w: grid takes either boundaries or a generator kind, not both", ErrInvalidConfig)
		}
		return nil
	}
	switch strings.ToLower(g.Kind) {
	case "linear", "geometric":
	case "":
		return fmt.Errorf("%w: grid needs boundaries or a kind", ErrInvalidConfig)
	default:
		return fmt.Errorf("%w: unknown grid kind %q", ErrInvalidConfig, g.Kind)
	}
	if g.Bins <= 0 {
		return fmt.Errorf("%w: grid bins must be positive, got %d", ErrInvalidConfig, g.Bins)
	}
	if !g.Max.GreaterThan(g.Min) {
		return fmt.Errorf("%w: grid max %s must exceed min %s", ErrInvalidConfig, g.Max, g.Min)
	}
	return nil
}

func (ip *InputParser) validateStrategy(s *StrategyConfig) error {
	if strings.ToLower(strings.TrimSpace(s.Kind)) == compoundKind {
		if len(s.Components) == 0 {
			return fmt.Errorf("%w: compound strategy has no components", ErrInvalidConfig)
		}
		for i, c := range s.Components {
			if err := ip.validateKind(c.Kind, c.Args); err != nil {
				return fmt.Errorf("component %d: %w", i, err)
			}
		}
		return nil
	}
	if len(s.Components) > 0 {
		return fmt.Errorf("%w: components are only allowed on compound strategies", ErrInvalidConfig)
	}
	return ip.validateKind(s.Kind, s.Args)
}

func (ip *InputParser) validateKind(kind string, args []float64) error {
	arity, ok := ip.Distributions.Arity(kind)
	if !ok {
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, distribution.ErrUnknownKind, kind)
	}
	if len(args) != arity {
		return fmt.Errorf("%w: %w: %s takes %d, got %d", ErrInvalidConfig, distribution.ErrArgumentCount, kind, arity, len(args))
	}
	return nil
}

// Build converts a validated problem file into a solvable Problem.
func (ip *InputParser) Build(pf *ProblemFile) (*domain.Problem, error) {
	g, err := buildGrid(&pf.Grid)
	if err != nil {
		return nil, err
	}
	strategies := make([]domain.Strategy, 0, len(pf.Strategies))
	for _, sc := range pf.Strategies {
		d, err := ip.buildDistribution(&sc)
		if err != nil {
			return nil, fmt.Errorf("strategy %q: %w", sc.Name, err)
		}
		s, err := domain.NewStrategy(sc.Name, d)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}
	u, err := ip.Utilities.Create(pf.Utility.Kind, pf.Utility.Args...)
	if err != nil {
		return nil, fmt.Errorf("utility: %w", err)
	}

	p := &domain.Problem{
		Name:       pf.Name,
		Periods:    pf.Periods,
		Cashflows:  Cashflows(pf),
		Grid:       g,
		Strategies: strategies,
		Utility:    u,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadProblem reads, validates and builds a problem file.
func (ip *InputParser) LoadProblem(filename string) (*domain.Problem, *ProblemFile, error) {
	pf, err := ip.LoadFromFile(filename)
	if err != nil {
		return nil, nil, err
	}
	p, err := ip.Build(pf)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filename, err)
	}
	return p, pf, nil
}

// Cashflows expands the file's cashflows to one value per period. Overlapping
// schedule segments add up.
func Cashflows(pf *ProblemFile) []float64 {
	out := make([]float64, pf.Periods)
	if len(pf.Cashflows) > 0 {
		for i, c := range pf.Cashflows {
			out[i] = c.InexactFloat64()
		}
		return out
	}
	for _, seg := range pf.CashflowSchedule {
		amount := seg.Amount.InexactFloat64()
		for p := seg.From; p <= seg.To; p++ {
			out[p] += amount
		}
	}
	return out
}

func buildGrid(gc *GridConfig) (grid.Grid, error) {
	if len(gc.Boundaries) > 0 {
		b := make([]float64, len(gc.Boundaries))
		for i, v := range gc.Boundaries {
			b[i] = v.InexactFloat64()
		}
		return grid.New(b)
	}
	lo, hi := gc.Min.InexactFloat64(), gc.Max.InexactFloat64()
	if strings.ToLower(gc.Kind) == "geometric" {
		return grid.Geometric(lo, hi, gc.Bins)
	}
	return grid.Linear(lo, hi, gc.Bins)
}

func (ip *InputParser) buildDistribution(sc *StrategyConfig) (distribution.Distribution, error) {
	if strings.ToLower(strings.TrimSpace(sc.Kind)) != compoundKind {
		return ip.Distributions.Create(sc.Kind, sc.Args...)
	}
	components := make([]distribution.Component, 0, len(sc.Components))
	for i, cc := range sc.Components {
		d, err := ip.Distributions.Create(cc.Kind, cc.Args...)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		components = append(components, distribution.Component{Weight: cc.Weight, Distribution: d})
	}
	c, err := distribution.NewCompound(components...)
	if err != nil {
		return nil, err
	}
	return c, nil
}
