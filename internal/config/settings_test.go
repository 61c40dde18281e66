package config

import (
	"path/filepath"
	"testing"

	"github.com/rgehrsitz/glidepath/internal/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), *s)

	b, err := s.NewBackend()
	require.NoError(t, err)
	assert.Equal(t, "sequential", b.Name())
}

func TestLoadSettingsFromFile(t *testing.T) {
	s, err := LoadSettings(filepath.Join("testdata", "settings.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "parallel", s.Backend)
	assert.Equal(t, 32, s.WorkgroupSize)
	assert.Equal(t, 2, s.Workers)
	assert.Equal(t, 1e-8, s.TieTolerance)
	assert.Equal(t, 200, s.MaxOuterBins)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "json", s.Format)

	b, err := s.NewBackend()
	require.NoError(t, err)
	par, ok := b.(*solver.Parallel)
	require.True(t, ok)
	assert.Equal(t, 32, par.WorkgroupSize)
	assert.Equal(t, 2, par.Workers)
}

func TestLoadSettingsEnvironmentOverrides(t *testing.T) {
	t.Setenv("GLIDEPATH_BACKEND", "parallel")
	t.Setenv("GLIDEPATH_WORKERS", "3")

	s, err := LoadSettings(filepath.Join("testdata", "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "parallel", s.Backend)
	assert.Equal(t, 3, s.Workers, "environment wins over the file")
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"unknown backend", func(s *Settings) { s.Backend = "gpu" }},
		{"zero workgroup", func(s *Settings) { s.WorkgroupSize = 0 }},
		{"negative workers", func(s *Settings) { s.Workers = -1 }},
		{"zero tolerance", func(s *Settings) { s.TieTolerance = 0 }},
		{"no outer bins", func(s *Settings) { s.MaxOuterBins = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)
		})
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join("testdata", "nope.yaml"))
	assert.Error(t, err)
}
