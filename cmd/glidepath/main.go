package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"

	"github.com/rgehrsitz/glidepath/internal/calculation"
	"github.com/rgehrsitz/glidepath/internal/config"
	"github.com/rgehrsitz/glidepath/internal/distribution"
	"github.com/rgehrsitz/glidepath/internal/domain"
	"github.com/rgehrsitz/glidepath/internal/output"
	"github.com/rgehrsitz/glidepath/internal/session"
	"github.com/rgehrsitz/glidepath/internal/utility"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "glidepath",
		Short: "Optimal investment glide paths by backward induction",
		Long: "glidepath finds, for every period and wealth level, the investment strategy that " +
			"maximises expected terminal utility, and projects the resulting wealth distribution.",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("settings", "", "Solver settings file (GLIDEPATH_* environment variables also apply)")
	root.PersistentFlags().String("backend", "", "Solver backend (sequential, parallel)")
	root.PersistentFlags().StringP("format", "f", "", "Output format ("+strings.Join(output.FormatterNames(), ", ")+")")
	root.PersistentFlags().Bool("debug", false, "Enable debug logging")
	root.PersistentFlags().String("output-dir", "", "Write the report to a timestamped file in this directory instead of stdout")

	root.AddCommand(solveCmd())
	root.AddCommand(trajectoryCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(distributionsCmd())
	root.AddCommand(versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "glidepath %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.Main.Version
	}
	return ""
}

// loadSettings layers command-line flags over the settings file and environment.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	path, _ := cmd.Flags().GetString("settings")
	s, err := config.LoadSettings(path)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("backend") {
		s.Backend, _ = cmd.Flags().GetString("backend")
	}
	if cmd.Flags().Changed("format") {
		s.Format, _ = cmd.Flags().GetString("format")
	}
	if debugMode, _ := cmd.Flags().GetBool("debug"); debugMode {
		s.LogLevel = "debug"
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// solveFile loads a problem file and solves it through a session.
func solveFile(cmd *cobra.Command, s *config.Settings, path string) (*calculation.Result, *config.ProblemFile, error) {
	logger := newCLILogger(cmd.ErrOrStderr(), s.LogLevel)

	problem, pf, err := config.NewInputParser().LoadProblem(path)
	if err != nil {
		return nil, nil, err
	}
	backend, err := s.NewBackend()
	if err != nil {
		return nil, nil, err
	}
	engine := calculation.NewCalculationEngineWithBackend(backend)
	engine.MaxOuterBins = s.MaxOuterBins
	engine.SetLogger(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	sess := session.New(engine)
	sess.SetLogger(logger)
	out, err := sess.Solve(ctx, problem)
	if err != nil {
		return nil, nil, err
	}
	logger.Debugf("request %s committed", out.RequestID)
	return out.Result, pf, nil
}

// render prints r in the requested format, or writes it under --output-dir when set.
func render(cmd *cobra.Command, format string, r *output.Report) error {
	f := output.GetFormatterByName(format)
	if f == nil {
		return fmt.Errorf("unsupported format %q (available: %s)", format, strings.Join(output.FormatterNames(), ", "))
	}
	if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
		path, err := output.WriteFormatted(f, r, dir, reportExtension(f.Name()))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
		return nil
	}
	data, err := f.Format(r)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func reportExtension(format string) string {
	switch format {
	case "json":
		return "json"
	case "csv", "csv-bands":
		return "csv"
	default:
		return "txt"
	}
}

func solveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "solve [problem-file]",
		Short: "Solve a problem and print the optimal strategy map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			result, _, err := solveFile(cmd, s, args[0])
			if err != nil {
				return err
			}
			return render(cmd, s.Format, output.NewReport(result.Name, s.Backend, result.Grid, result.Solution))
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [problem-file]",
		Short: "Validate a problem file without solving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			problem, _, err := config.NewInputParser().LoadProblem(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %s\n", args[0], describe(problem))
			return nil
		},
	}
}

func describe(p *domain.Problem) string {
	return fmt.Sprintf("%d periods, %d wealth bins, %d strategies (%s)",
		p.Periods, p.Grid.Bins(), len(p.Strategies), strings.Join(p.StrategyNames(), ", "))
}

func distributionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "distributions",
		Short: "List the available distribution and utility kinds",
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			reg := distribution.NewRegistry()
			fmt.Fprintln(w, "Distributions:")
			for _, kind := range reg.Kinds() {
				arity, _ := reg.Arity(kind)
				fmt.Fprintf(w, "  %-12s %d args\n", kind, arity)
			}
			fmt.Fprintln(w, "  compound     weighted components")
			fmt.Fprintln(w, "Utilities:")
			for _, usage := range utility.Usages() {
				fmt.Fprintf(w, "  %s\n", usage)
			}
		},
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
