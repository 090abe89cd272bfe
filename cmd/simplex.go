package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/numopt/internal/simplex"
	"github.com/cwbudde/numopt/internal/store"
	"github.com/spf13/cobra"
)

type simplexOptions struct {
	Input     string  `mapstructure:"input"`
	MaxPivots int     `mapstructure:"max-pivots"`
	Eps       float64 `mapstructure:"eps"`
	Save      bool    `mapstructure:"save"`
	DataDir   string  `mapstructure:"data-dir"`
}

var simplexCmd = &cobra.Command{
	Use:   "simplex",
	Short: "Solve a standard-form linear program",
	Long: `Maximizes cᵀx subject to Ax <= b, x >= 0 with the tableau Simplex method.

Input format:
  Line 1: <num_constraints> <num_variables>
  Line 2: objective coefficients (length = num_variables)
  Next lines: each constraint has num_variables coefficients followed by RHS
  Lines beginning with # or blank lines are ignored.`,
	RunE: runSimplex,
}

func init() {
	simplexCmd.Flags().String("input", "", "LP input file (required)")
	simplexCmd.Flags().Int("max-pivots", 0, "Abort after N pivots (0 = unlimited)")
	simplexCmd.Flags().Float64("eps", simplex.DefaultEps, "Numeric tolerance")
	simplexCmd.Flags().Bool("save", false, "Save a run record")
	simplexCmd.Flags().String("data-dir", "./data", "Base directory for run records")

	rootCmd.AddCommand(simplexCmd)
}

func runSimplex(cmd *cobra.Command, args []string) error {
	v, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	var opts simplexOptions
	if err := v.Unmarshal(&opts); err != nil {
		return fmt.Errorf("failed to decode options: %w", err)
	}
	if opts.Input == "" {
		return fmt.Errorf("--input is required")
	}

	problem, err := simplex.LoadLP(opts.Input)
	if err != nil {
		return err
	}
	slog.Info("Loaded linear program", "constraints", problem.M(), "variables", problem.N())

	solver := &simplex.Solver{Eps: opts.Eps, MaxPivots: opts.MaxPivots}
	start := time.Now()
	sol := solver.Solve(problem)
	elapsed := time.Since(start)

	slog.Info("Simplex finished", "status", sol.Status.String(), "pivots", sol.Pivots, "elapsed", elapsed)

	if opts.Save {
		summary := store.SimplexSummary{
			Input:       opts.Input,
			Constraints: problem.M(),
			Variables:   problem.N(),
			Status:      sol.Status.String(),
			Solution:    sol.Variables,
			Objective:   sol.Objective,
		}
		if err := saveRun(opts.DataDir, store.NewSimplexRecord(store.NewRunID(), summary, elapsed)); err != nil {
			return err
		}
	}

	if sol.Status != simplex.Optimal {
		return fmt.Errorf("simplex failed: %s", sol.Status)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Optimal value: %.10f\n", sol.Objective)
	for j, x := range sol.Variables {
		fmt.Fprintf(out, "x%d = %.10f\n", j+1, x)
	}
	return nil
}

// saveRun persists record under dataDir and logs its ID.
func saveRun(dataDir string, record *store.RunRecord) error {
	runStore, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}
	if err := runStore.SaveRun(record); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	slog.Info("Saved run", "run_id", record.RunID, "path", runStore.RunDir(record.RunID))
	return nil
}
