package output

import (
	"encoding/json"
	"fmt"

	"github.com/rgehrsitz/glidepath/internal/domain"
	"github.com/rgehrsitz/glidepath/internal/trajectory"
)

// JSONFormatter renders the report as an indented JSON document. Ambiguous
// strategies are null.
type JSONFormatter struct{}

func (JSONFormatter) Name() string { return "json" }

type jsonReport struct {
	Name        string                  `json:"name,omitempty"`
	Backend     string                  `json:"backend,omitempty"`
	Boundaries  []float64               `json:"boundaries"`
	Values      []float64               `json:"values"`
	Solution    *domain.Solution        `json:"solution"`
	StartPeriod *int                    `json:"startPeriod,omitempty"`
	StartWealth *float64                `json:"startWealth,omitempty"`
	Bands       []trajectory.WealthBand `json:"quantileBands,omitempty"`
}

func (JSONFormatter) Format(r *Report) ([]byte, error) {
	if r.Solution == nil {
		return nil, fmt.Errorf("report %q has no solution", r.Name)
	}
	doc := jsonReport{
		Name:       r.Name,
		Backend:    r.Backend,
		Boundaries: r.Grid.Boundaries,
		Values:     r.Grid.Values,
		Solution:   r.Solution,
		Bands:      r.Bands,
	}
	if len(r.Bands) > 0 {
		doc.StartPeriod = &r.StartPeriod
		doc.StartWealth = &r.StartWealth
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}
