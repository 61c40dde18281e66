package output

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rgehrsitz/glidepath/internal/domain"
	"github.com/rgehrsitz/glidepath/internal/grid"
	"github.com/rgehrsitz/glidepath/internal/trajectory"
)

// Report is everything a formatter renders for one solved problem.
type Report struct {
	Name     string
	Backend  string
	Grid     grid.Grid
	Solution *domain.Solution

	// StartPeriod and StartWealth describe where Bands were projected from.
	StartPeriod int
	StartWealth float64
	Bands       []trajectory.WealthBand
}

// NewReport wraps a solution on grid g.
func NewReport(name, backend string, g grid.Grid, sol *domain.Solution) *Report {
	return &Report{Name: name, Backend: backend, Grid: g, Solution: sol}
}

// WithBands attaches quantile bands projected from wealth at startPeriod.
func (r *Report) WithBands(startPeriod int, startWealth float64, bands []trajectory.WealthBand) *Report {
	r.StartPeriod = startPeriod
	r.StartWealth = startWealth
	r.Bands = bands
	return r
}

// Formatter renders a report.
type Formatter interface {
	Name() string
	Format(r *Report) ([]byte, error)
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc struct {
	ID string
	F  func(r *Report) ([]byte, error)
}

func (f FormatterFunc) Name() string                     { return f.ID }
func (f FormatterFunc) Format(r *Report) ([]byte, error) { return f.F(r) }

// Formatters returns the built-in formatters.
func Formatters() []Formatter {
	return []Formatter{
		ConsoleFormatter{},
		JSONFormatter{},
		CSVFormatter{},
		CSVBandsFormatter{},
	}
}

// GetFormatterByName returns the built-in formatter with the given name, or nil.
func GetFormatterByName(name string) Formatter {
	for _, f := range Formatters() {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// FormatterNames lists the built-in formatter names.
func FormatterNames() []string {
	fs := Formatters()
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name()
	}
	return names
}

// WriteFormatted renders r into a timestamped file under dir and returns its path.
func WriteFormatted(f Formatter, r *Report, dir, ext string) (string, error) {
	data, err := f.Format(r)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("glidepath_report_%s.%s", time.Now().Format("20060102_150405"), ext)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
