package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cwbudde/qfmsurface/internal/runner"
	"github.com/cwbudde/qfmsurface/internal/store"
)

var (
	runProblem string
	runMethod  string
	runTol     float64
	runMaxIter int
	runWeights []float64
	runPop     int
	runSeed    int64
	runBound   float64
	runDataDir string
	runCfgFile string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single solve",
	Long: `Runs one QFM solve on a named demo problem and stores the result
record under the data directory. Passing more than one penalty weight runs
a continuation: each stage restarts from the previous optimum with a
tighter label enforcement, and a per-stage trace is written.`,
	RunE: runSolve,
}

func init() {
	runCmd.Flags().StringVar(&runProblem, "problem", "ellipsoid", "Problem name (ellipsoid, degenerate)")
	runCmd.Flags().StringVar(&runMethod, "method", "lbfgs", "Solver method: lbfgs, slsqp, mayfly")
	runCmd.Flags().Float64Var(&runTol, "tol", 1e-3, "Convergence tolerance")
	runCmd.Flags().IntVar(&runMaxIter, "maxiter", 1000, "Max iterations per solve")
	runCmd.Flags().Float64SliceVar(&runWeights, "weights", nil, "Penalty continuation weights (lbfgs, mayfly)")
	runCmd.Flags().IntVar(&runPop, "pop", 30, "Mayfly population size")
	runCmd.Flags().Int64Var(&runSeed, "seed", 42, "Mayfly random seed")
	runCmd.Flags().Float64Var(&runBound, "bound", 10, "Mayfly symmetric box limit")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "./data", "Base directory for run records")
	runCmd.Flags().StringVar(&runCfgFile, "config", "", "YAML config file overriding the flags")

	rootCmd.AddCommand(runCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg := store.RunConfig{
		Problem: runProblem,
		Method:  runMethod,
		Tol:     runTol,
		MaxIter: runMaxIter,
		Weights: runWeights,
		Pop:     runPop,
		Seed:    runSeed,
		Bound:   runBound,
	}

	if runCfgFile != "" {
		var err error
		cfg, err = loadRunConfig(runCfgFile, cfg)
		if err != nil {
			return err
		}
	}

	st, err := store.NewFSStore(runDataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	runID := uuid.New().String()

	var tracer *store.TraceWriter
	if len(cfg.Weights) > 1 {
		tracer, err = store.NewTraceWriter(runDataDir, runID, false)
		if err != nil {
			return fmt.Errorf("failed to create trace writer: %w", err)
		}
		defer tracer.Close()
	}

	slog.Info("Starting solve", "run_id", runID, "problem", cfg.Problem, "method", cfg.Method)

	start := time.Now()
	record, err := runner.Execute(cfg, tracer)
	if err != nil {
		return err
	}
	record.RunID = runID

	if err := st.SaveResult(runID, record); err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}

	slog.Info("Solve finished",
		"run_id", runID,
		"elapsed", time.Since(start),
		"fun", record.Fun,
		"grad_norm", record.GradNorm,
		"label", record.Label,
		"target", record.TargetLabel,
		"success", record.Success,
	)

	fmt.Printf("run %s: fun=%.6g |grad|=%.3g label=%.6g (target %.6g) success=%v\n",
		runID, record.Fun, record.GradNorm, record.Label, record.TargetLabel, record.Success)
	return nil
}

// loadRunConfig overlays a viper-parsed YAML file on top of the flag
// values. Keys absent from the file keep their flag values.
func loadRunConfig(path string, base store.RunConfig) (store.RunConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return base, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := base
	if err := v.Unmarshal(&cfg); err != nil {
		return base, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
