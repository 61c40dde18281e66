package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rgehrsitz/glidepath/internal/domain"
)

const ambiguousMark = "?"

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	headerStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle      = lipgloss.NewStyle().Padding(0, 1)
	ambiguousStyle = cellStyle.Foreground(lipgloss.Color("9"))
	mutedStyle     = lipgloss.NewStyle().Faint(true)
)

// ConsoleFormatter renders the policy map and quantile bands as terminal tables.
type ConsoleFormatter struct{}

func (ConsoleFormatter) Name() string { return "console" }

func (ConsoleFormatter) Format(r *Report) ([]byte, error) {
	if r.Solution == nil {
		return nil, fmt.Errorf("report %q has no solution", r.Name)
	}
	var b strings.Builder
	sol := r.Solution

	title := "GLIDE PATH"
	if r.Name != "" {
		title += ": " + r.Name
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d periods, %d wealth bins, %d strategies, backend %s",
		sol.Periods(), sol.Bins(), len(sol.StrategyNames), r.Backend)))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Strategies"))
	b.WriteString("\n")
	for i, name := range sol.StrategyNames {
		fmt.Fprintf(&b, "  %d  %s\n", i, name)
	}
	fmt.Fprintf(&b, "  %s  ambiguous (tie left unresolved)\n\n", ambiguousMark)

	b.WriteString(sectionStyle.Render("Optimal strategy by wealth and period"))
	b.WriteString("\n")
	b.WriteString(policyTable(r))
	b.WriteString("\n")

	if n := sol.Ambiguous(); n > 0 {
		fmt.Fprintf(&b, "%s\n", mutedStyle.Render(fmt.Sprintf("%d cells ambiguous", n)))
	}

	if len(r.Bands) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(fmt.Sprintf("Wealth quantiles from %s at period %d",
			FormatWealth(r.StartWealth), r.StartPeriod)))
		b.WriteString("\n")
		b.WriteString(bandsTable(r))
		b.WriteString("\n")
	}
	return []byte(b.String()), nil
}

// policyTable lists bins top-down so higher wealth reads higher on screen.
func policyTable(r *Report) string {
	sol := r.Solution
	headers := []string{"wealth"}
	for p := 0; p < sol.Periods(); p++ {
		headers = append(headers, fmt.Sprintf("%d", p))
	}

	rows := make([][]string, 0, sol.Bins())
	for i := sol.Bins() - 1; i >= 0; i-- {
		row := []string{fmt.Sprintf("%s-%s", FormatWealth(r.Grid.Boundaries[i]), FormatWealth(r.Grid.Boundaries[i+1]))}
		for p := 0; p < sol.Periods(); p++ {
			row = append(row, choiceLabel(sol.OptimalStrategies[p][i]))
		}
		rows = append(rows, row)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col > 0 && row >= 0 && row < len(rows) && rows[row][col] == ambiguousMark:
				return ambiguousStyle
			default:
				return cellStyle
			}
		}).
		String()
}

func bandsTable(r *Report) string {
	headers := []string{"period"}
	for _, band := range r.Bands {
		headers = append(headers, fmt.Sprintf("%g%% low", band.Probability*100), fmt.Sprintf("%g%% high", band.Probability*100))
	}
	var rows [][]string
	for k, x := range r.Bands[0].X {
		row := []string{fmt.Sprintf("%d", x)}
		for _, band := range r.Bands {
			row = append(row, FormatWealth(band.Lower[k]), FormatWealth(band.Upper[k]))
		}
		rows = append(rows, row)
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

func choiceLabel(c domain.Choice) string {
	if i, ok := c.Index(); ok {
		return fmt.Sprintf("%d", i)
	}
	return ambiguousMark
}
