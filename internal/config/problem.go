package config

import "github.com/shopspring/decimal"

// ProblemFile is the YAML description of a decision problem.
type ProblemFile struct {
	Name             string            `yaml:"name"`
	Periods          int               `yaml:"periods"`
	Cashflows        []decimal.Decimal `yaml:"cashflows,omitempty"`
	CashflowSchedule []CashflowSegment `yaml:"cashflow_schedule,omitempty"`
	Grid             GridConfig        `yaml:"grid"`
	Strategies       []StrategyConfig  `yaml:"strategies"`
	Utility          UtilityConfig     `yaml:"utility"`
	Trajectory       *TrajectoryConfig `yaml:"trajectory,omitempty"`
}

// CashflowSegment adds Amount to every period in [From, To].
type CashflowSegment struct {
	From   int             `yaml:"from"`
	To     int             `yaml:"to"`
	Amount decimal.Decimal `yaml:"amount"`
}

// GridConfig is either explicit boundaries or a generator (linear or geometric).
type GridConfig struct {
	Boundaries []decimal.Decimal `yaml:"boundaries,omitempty"`
	Kind       string            `yaml:"kind,omitempty"`
	Min        decimal.Decimal   `yaml:"min,omitempty"`
	Max        decimal.Decimal   `yaml:"max,omitempty"`
	Bins       int               `yaml:"bins,omitempty"`
}

// StrategyConfig names a return distribution. Kind "compound" takes Components
// instead of Args.
type StrategyConfig struct {
	Name       string            `yaml:"name"`
	Kind       string            `yaml:"kind"`
	Args       []float64         `yaml:"args,omitempty"`
	Components []ComponentConfig `yaml:"components,omitempty"`
}

// ComponentConfig is one weighted part of a compound strategy.
type ComponentConfig struct {
	Weight float64   `yaml:"weight"`
	Kind   string    `yaml:"kind"`
	Args   []float64 `yaml:"args,omitempty"`
}

// UtilityConfig selects the terminal utility function.
type UtilityConfig struct {
	Kind string    `yaml:"kind"`
	Args []float64 `yaml:"args,omitempty"`
}

// TrajectoryConfig holds default trajectory query parameters.
type TrajectoryConfig struct {
	Period    int             `yaml:"period"`
	Wealth    decimal.Decimal `yaml:"wealth"`
	Quantiles []float64       `yaml:"quantiles,omitempty"`
}
