package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jason-marshall/defense-pm-tool-sub006/internal/config"
	"github.com/jason-marshall/defense-pm-tool-sub006/internal/cpm"
	"github.com/jason-marshall/defense-pm-tool-sub006/internal/ctxlog"
	"github.com/jason-marshall/defense-pm-tool-sub006/internal/loader"
	"github.com/jason-marshall/defense-pm-tool-sub006/internal/network"
	"github.com/jason-marshall/defense-pm-tool-sub006/internal/report"
	"github.com/jason-marshall/defense-pm-tool-sub006/internal/ui"
)

// Exit codes.
const (
	exitError      = 1
	exitInvalid    = 2
	exitInfeasible = 3
)

var (
	flagConfig              string
	flagDeadline            int
	flagProgram             string
	flagJSON                bool
	flagNoColor             bool
	flagLogLevel            string
	flagLogFormat           string
	flagMaxParallel         int
	flagFailOnNegativeFloat bool
	flagFormat              string
	flagOutput              string

	cfg config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cpm",
		Short: "Critical path scheduling for program networks",
		Long: `cpm reads a network of activities and dependencies (FS, SS, FF, SF with
lags), computes early and late dates, total and free float, and reports
the critical path. Networks are read from JSON, JSONC, YAML or HCL files.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "YAML config file")
	pf.IntVar(&flagDeadline, "deadline", 0, "Finish deadline; seeds the backward pass instead of the project finish")
	pf.StringVar(&flagProgram, "program", "", `gjson path selecting one program from a JSON bundle (e.g. "programs.1")`)
	pf.BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	pf.BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	pf.StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
	pf.IntVar(&flagMaxParallel, "max-parallel", 4, "Max programs scheduled concurrently by batch")
	pf.BoolVar(&flagFailOnNegativeFloat, "fail-on-negative-float", false, "Exit with status 3 when any activity has negative float")

	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(criticalCmd())
	rootCmd.AddCommand(vizCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(batchCmd())

	return rootCmd
}

// setup resolves the configuration (defaults, then --config, then flags the
// user actually set) and installs the logger on the command context.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg = config.Default()
	if flagConfig != "" {
		if cfg, err = config.Load(flagConfig); err != nil {
			return err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("deadline") {
		d := flagDeadline
		cfg.Deadline = &d
	}
	if flags.Changed("json") {
		cfg.JSON = flagJSON
	}
	if flags.Changed("no-color") {
		cfg.NoColor = flagNoColor
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}
	if flags.Changed("max-parallel") {
		cfg.MaxParallel = flagMaxParallel
	}
	if flags.Changed("fail-on-negative-float") {
		cfg.FailOnNegativeFloat = flagFailOnNegativeFloat
	}
	if flags.Changed("format") {
		cfg.Format = flagFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.NoColor {
		ui.SetEnabled(false)
	}

	logger := ctxlog.New(cmd.ErrOrStderr(), cfg.LogFormat, cfg.SlogLevel())
	cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
	return nil
}

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule FILE",
		Short: "Compute and print the schedule of every activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rpt, err := scheduleFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case flagOutput != "":
				data, err := rpt.JSON()
				if err != nil {
					return err
				}
				if err := os.WriteFile(flagOutput, data, 0644); err != nil {
					return fmt.Errorf("write schedule: %w", err)
				}
			case cfg.JSON:
				if err := outputJSON(out, rpt.JSON); err != nil {
					return err
				}
			default:
				rpt.PrintSchedule(out)
			}
			return checkFeasible(rpt.Program, rpt.Schedule)
		},
	}

	cmd.Flags().StringVar(&flagOutput, "output", "", "Save the schedule as JSON to a file")

	return cmd
}

func criticalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "critical FILE",
		Short: "Print the critical path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rpt, err := scheduleFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cfg.JSON {
				if err := outputJSON(out, func() ([]byte, error) {
					return marshalIndent(map[string]interface{}{
						"program":          rpt.Program,
						"critical_path":    rpt.Schedule.CriticalPath,
						"project_duration": rpt.Schedule.ProjectDuration,
					})
				}); err != nil {
					return err
				}
			} else {
				rpt.PrintCritical(out)
			}
			return checkFeasible(rpt.Program, rpt.Schedule)
		},
	}
}

func vizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viz FILE",
		Short: "Print an ASCII or Graphviz DOT diagram of the network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rpt, err := scheduleFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if cfg.Format == "dot" {
				rpt.PrintDOT(cmd.OutOrStdout())
				return nil
			}

			rpt.PrintASCII(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "ascii", "Output format (ascii, dot)")

	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a network for invalid references and cycles without scheduling it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loader.Load(args[0], loader.Options{Select: flagProgram})
			if err != nil {
				return err
			}

			net, err := network.BuildProgram(p)
			if err != nil {
				return fmt.Errorf("%s: %w", p.Name, err)
			}
			if cycle := net.DetectCycle(); cycle != nil {
				return fmt.Errorf("%s: %w", p.Name, &network.CircularDependencyError{Path: cycle})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d activities, %d dependencies, no cycles\n",
				ui.Green("✓"), ui.ProgramPrefix(p.Name), net.ActivityCount(), len(net.Edges))
			return nil
		},
	}
}

func batchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch FILE...",
		Short: "Schedule every program in one or more files concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var programs []*network.Program
			for _, path := range args {
				ps, err := loader.LoadAll(path)
				if err != nil {
					return err
				}
				programs = append(programs, ps...)
			}
			for _, p := range programs {
				applyDeadline(p)
			}

			results, err := cpm.CalculateAll(cmd.Context(), programs, cfg.MaxParallel)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cfg.JSON {
				if err := outputJSON(out, func() ([]byte, error) { return report.BatchJSON(results) }); err != nil {
					return err
				}
			} else {
				report.PrintBatch(out, results)
			}

			var (
				failed   int
				firstErr error
			)
			for _, res := range results {
				if res.Err != nil {
					failed++
					if firstErr == nil {
						firstErr = fmt.Errorf("%s: %w", res.Program, res.Err)
					}
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d programs failed: %w", failed, len(results), firstErr)
			}
			for _, res := range results {
				if err := checkFeasible(res.Program, res.Schedule); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// scheduleFile loads one program, schedules it and returns a reporter for it.
func scheduleFile(ctx context.Context, path string) (*report.Reporter, error) {
	logger := ctxlog.FromContext(ctx)

	p, err := loader.Load(path, loader.Options{Select: flagProgram})
	if err != nil {
		return nil, err
	}
	applyDeadline(p)
	logger.Debug("program loaded", "program", p.Name, "activities", len(p.Activities), "dependencies", len(p.Dependencies))

	eng := cpm.NewEngine(cpm.WithLogger(logger.With("program", p.Name)))
	if _, err := eng.CalculateProgram(p); err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name, err)
	}

	// The engine has already validated this input.
	net, err := network.BuildProgram(p)
	if err != nil {
		return nil, err
	}

	return report.New(p.Name, net, eng.Schedule()), nil
}

// applyDeadline lets a configured deadline override the one in the file.
func applyDeadline(p *network.Program) {
	if cfg.Deadline != nil {
		d := *cfg.Deadline
		p.Deadline = &d
	}
}

// infeasibleError reports negative float when --fail-on-negative-float is set.
type infeasibleError struct {
	Program    string
	Activities []string
}

func (e *infeasibleError) Error() string {
	return fmt.Sprintf("%s: negative float on %s", e.Program, strings.Join(e.Activities, ", "))
}

func checkFeasible(program string, s *cpm.Schedule) error {
	if cfg.FailOnNegativeFloat && s != nil && s.Infeasible {
		return &infeasibleError{Program: program, Activities: s.NegativeFloat}
	}
	return nil
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var (
		verr *network.ValidationError
		cerr *network.CircularDependencyError
		ierr *infeasibleError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &cerr):
		return exitInvalid
	case errors.As(err, &ierr):
		return exitInfeasible
	}
	return exitError
}

// --- Output helpers ---

func outputJSON(w io.Writer, marshal func() ([]byte, error)) error {
	data, err := marshal()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func marshalIndent(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
