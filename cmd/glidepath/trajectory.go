package main

import (
	"fmt"

	"github.com/rgehrsitz/glidepath/internal/output"
	"github.com/rgehrsitz/glidepath/internal/trajectory"
	"github.com/spf13/cobra"
)

var defaultQuantiles = []float64{0.5, 0.9}

func trajectoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trajectory [problem-file]",
		Short: "Project the wealth distribution under the optimal policy",
		Long: "Solves the problem, then projects probability mass forward from a starting wealth and " +
			"period and prints the wealth quantile bands. Defaults come from the problem file's " +
			"trajectory block.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			result, pf, err := solveFile(cmd, s, args[0])
			if err != nil {
				return err
			}

			period, wealth, quantiles := 0, 0.0, defaultQuantiles
			if pf.Trajectory != nil {
				period = pf.Trajectory.Period
				wealth = pf.Trajectory.Wealth.InexactFloat64()
				if len(pf.Trajectory.Quantiles) > 0 {
					quantiles = pf.Trajectory.Quantiles
				}
			}
			if cmd.Flags().Changed("period") {
				period, _ = cmd.Flags().GetInt("period")
			}
			if cmd.Flags().Changed("wealth") {
				wealth, _ = cmd.Flags().GetFloat64("wealth")
			}
			if cmd.Flags().Changed("quantiles") {
				quantiles, _ = cmd.Flags().GetFloat64Slice("quantiles")
			}

			bands, err := result.QuantilesFromWealth(period, wealth, quantiles)
			if err != nil {
				return fmt.Errorf("trajectory: %w", err)
			}
			wealthBands := make([]trajectory.WealthBand, len(bands))
			for i, b := range bands {
				wealthBands[i] = b.Wealth(result.Grid)
			}

			report := output.NewReport(result.Name, s.Backend, result.Grid, result.Solution).
				WithBands(period, wealth, wealthBands)
			return render(cmd, s.Format, report)
		},
	}
	cmd.Flags().Int("period", 0, "Start period")
	cmd.Flags().Float64("wealth", 0, "Start wealth")
	cmd.Flags().Float64Slice("quantiles", defaultQuantiles, "Central probabilities to bracket")
	return cmd
}
