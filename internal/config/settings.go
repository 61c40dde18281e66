package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/rgehrsitz/glidepath/internal/grid"
	"github.com/rgehrsitz/glidepath/internal/solver"
	"github.com/spf13/viper"
)

// ErrInvalidSettings is returned when solver settings fail validation.
var ErrInvalidSettings = errors.New("invalid settings")

// EnvPrefix prefixes environment variables that override settings, e.g. GLIDEPATH_BACKEND.
const EnvPrefix = "GLIDEPATH"

// Settings tunes the solver and the CLI's output.
type Settings struct {
	Backend       string  `mapstructure:"backend"`
	WorkgroupSize int     `mapstructure:"workgroup_size"`
	Workers       int     `mapstructure:"workers"`
	TieTolerance  float64 `mapstructure:"tie_tolerance"`
	MaxOuterBins  int     `mapstructure:"max_outer_bins"`
	LogLevel      string  `mapstructure:"log_level"`
	Format        string  `mapstructure:"format"`
}

// DefaultSettings returns the settings used when nothing overrides them.
func DefaultSettings() Settings {
	return Settings{
		Backend:       "sequential",
		WorkgroupSize: solver.DefaultWorkgroupSize,
		Workers:       runtime.GOMAXPROCS(0),
		TieTolerance:  solver.DefaultTieTolerance,
		MaxOuterBins:  grid.DefaultMaxOuterBins,
		LogLevel:      "info",
		Format:        "console",
	}
}

// LoadSettings reads settings from path (any format viper understands; empty for
// none) layered over the defaults, then applies GLIDEPATH_* environment variables.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	def := DefaultSettings()
	v.SetDefault("backend", def.Backend)
	v.SetDefault("workgroup_size", def.WorkgroupSize)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("tie_tolerance", def.TieTolerance)
	v.SetDefault("max_outer_bins", def.MaxOuterBins)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("format", def.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read settings %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks ranges and names.
func (s *Settings) Validate() error {
	if _, err := s.NewBackend(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	if s.WorkgroupSize <= 0 {
		return fmt.Errorf("%w: workgroup_size must be positive, got %d", ErrInvalidSettings, s.WorkgroupSize)
	}
	if s.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidSettings, s.Workers)
	}
	if !(s.TieTolerance > 0 && s.TieTolerance < 1) {
		return fmt.Errorf("%w: tie_tolerance must be in (0, 1), got %g", ErrInvalidSettings, s.TieTolerance)
	}
	if s.MaxOuterBins <= 0 {
		return fmt.Errorf("%w: max_outer_bins must be positive, got %d", ErrInvalidSettings, s.MaxOuterBins)
	}
	return nil
}

// NewBackend builds the configured solver back-end.
func (s *Settings) NewBackend() (solver.Backend, error) {
	return solver.New(s.Backend, solver.Options{
		TieTolerance:  s.TieTolerance,
		WorkgroupSize: s.WorkgroupSize,
		Workers:       s.Workers,
	})
}
